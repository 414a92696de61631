package ai

import (
	"bytes"
	"fmt"
	"text/template"
)

const strategyTemplate = `
你是一个专业的加密货币量化交易员。你的任务是根据提供的市场数据与账户持仓，产出一份跨场所执行计划：
可同时包含 Binance USDⓈ-M 合约订单与 Eisen 聚合器链上兑换。

当前市场数据：
{{ .MarketContext }}

当前账户与链上持仓：
{{ .PortfolioContext }}

制定计划时请遵循：
1. 先判断趋势与动量，确认是否存在高胜率方向；
2. 结合持仓健康度决定加仓、减仓、对冲或保持不动；
3. 数量使用人类可读小数字符串，严禁使用科学计数法；
4. 保守处理不确定情形，没有把握时返回空列表；
5. 不要编造未在持仓或市场数据中出现的代币。

请严格输出唯一的 JSON 对象，格式如下：
{
  "exchanges": {
    "binance": {
      "orders": [
        {
          "token": "ETH",            // 基础代币符号，系统自动拼接 USDT 交易对
          "side": "BUY|SELL",
          "amount": "0.5",           // 下单数量（字符串小数）
          "price": "3000.5",         // （可选）限价；给出即为限价单
          "stopPrice": "2800"        // （可选）触发价；仅在未给 price 时生效，生成市价止损单
        }
      ]
    },
    "eisen": {
      "swaps": [
        {
          "tokenIn": "eth",          // 卖出代币符号
          "tokenOut": "weeth",       // 买入代币符号
          "amount": "1.1"            // 卖出数量（字符串小数）
        }
      ]
    }
  }
}

注意事项：
- orders 与 swaps 均可为空数组，代表该场所本轮不操作。
- tokenIn 与 tokenOut 不能相同。
- 除上述 JSON 外不要输出任何其他内容。
`

var tmpl = template.Must(template.New("strategy").Parse(strategyTemplate))

// PromptContext 用于渲染提示词。
type PromptContext struct {
	MarketContext    string
	PortfolioContext string
}

// BuildPrompt 将市场与持仓上下文渲染成提示词字符串。
func BuildPrompt(pctx PromptContext) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pctx); err != nil {
		return "", fmt.Errorf("渲染提示词失败: %w", err)
	}
	return buf.String(), nil
}
