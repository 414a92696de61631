package execution

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"delta-ai/internal/strategy"
	"delta-ai/internal/venue"
)

// CexExecutor 执行 CEX 订单意图。
type CexExecutor interface {
	ExecuteOrder(ctx context.Context, order strategy.Order) (string, error)
}

// DexExecutor 执行 DEX 兑换意图。
type DexExecutor interface {
	ExecuteSwap(ctx context.Context, swap strategy.Swap) (string, error)
}

// Dispatcher 将策略派发到两条执行腿。
// 两腿并发执行，腿内条目严格串行；单个条目失败只记录结果，
// 不中断同腿后续条目，也不触碰另一条腿。核心不做任何自动重试。
type Dispatcher struct {
	cex    CexExecutor
	dex    DexExecutor
	logger *zap.Logger
}

// NewDispatcher 创建调度器。
func NewDispatcher(cex CexExecutor, dex DexExecutor, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{cex: cex, dex: dex, logger: logger}
}

// Dispatch 执行整份策略并汇总结果。每个被尝试的条目恰好产生一条 Result。
func (d *Dispatcher) Dispatch(ctx context.Context, s *strategy.Strategy) (*Report, error) {
	report := &Report{StartedAt: time.Now().UTC()}
	if s == nil || s.Empty() {
		report.FinishedAt = time.Now().UTC()
		return report, nil
	}

	var (
		mu      sync.Mutex
		results []Result
	)
	collect := func(rs []Result) {
		mu.Lock()
		results = append(results, rs...)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		collect(d.runBinanceLeg(ctx, s.Exchanges.Binance.Orders))
		return nil
	})
	g.Go(func() error {
		collect(d.runEisenLeg(ctx, s.Exchanges.Eisen.Swaps))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 汇总顺序固定：先 CEX 腿后 DEX 腿，腿内按条目下标。
	report.Results = orderResults(results)
	report.FinishedAt = time.Now().UTC()

	d.logger.Info("策略执行完成",
		zap.Int("total", len(report.Results)),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
	)
	return report, nil
}

func (d *Dispatcher) runBinanceLeg(ctx context.Context, orders []strategy.Order) []Result {
	results := make([]Result, 0, len(orders))
	for i, order := range orders {
		res := Result{Venue: VenueBinance, Index: i, Description: order.Describe()}
		id, err := d.cex.ExecuteOrder(ctx, order)
		d.finish(&res, id, err)
		results = append(results, res)
	}
	return results
}

func (d *Dispatcher) runEisenLeg(ctx context.Context, swaps []strategy.Swap) []Result {
	results := make([]Result, 0, len(swaps))
	for i, swap := range swaps {
		res := Result{Venue: VenueEisen, Index: i, Description: swap.Describe()}
		id, err := d.dex.ExecuteSwap(ctx, swap)
		d.finish(&res, id, err)
		results = append(results, res)
	}
	return results
}

func (d *Dispatcher) finish(res *Result, venueID string, err error) {
	if err == nil {
		res.Success = true
		res.VenueID = venueID
		return
	}
	res.Error = err.Error()
	res.ErrorKind = venue.KindOf(err)
	res.Temporary = venue.IsTemporary(err)
	d.logger.Warn("执行条目失败",
		zap.String("venue", string(res.Venue)),
		zap.Int("index", res.Index),
		zap.String("description", res.Description),
		zap.String("kind", string(res.ErrorKind)),
		zap.Error(err),
	)
}

// orderResults 腿内采集本身按下标串行追加，这里只按场所归组。
func orderResults(results []Result) []Result {
	ordered := make([]Result, 0, len(results))
	for _, v := range []Venue{VenueBinance, VenueEisen} {
		for _, r := range results {
			if r.Venue == v {
				ordered = append(ordered, r)
			}
		}
	}
	return ordered
}
