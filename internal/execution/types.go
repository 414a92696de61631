package execution

import (
	"time"

	"delta-ai/internal/venue"
)

// Venue 标识执行条目所属的交易场所。
type Venue string

const (
	VenueBinance Venue = "binance"
	VenueEisen   Venue = "eisen"
)

// Result 单个执行条目的结果。每个被尝试的条目恰好产生一条记录。
type Result struct {
	Venue       Venue
	Index       int
	Description string
	Success     bool
	VenueID     string // CEX 订单号或链上交易哈希
	Error       string
	ErrorKind   venue.Kind
	Temporary   bool
}

// Report 一次策略执行的完整汇总，按腿内顺序排列。
type Report struct {
	Results    []Result
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded 统计成功条目数。
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Failed 统计失败条目数。
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// AllSucceeded 报告是否全部条目执行成功。
func (r *Report) AllSucceeded() bool {
	return r.Failed() == 0
}
