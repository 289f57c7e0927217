package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

const chartsPath = "/charts"

func (c *Client) ExpenseByTag(ctx context.Context, q ChartQuery) (ExpenseByTagReport, error) {
	env, err := c.do(ctx, http.MethodGet, chartsPath+"/expense-by-tag", q.Values(), nil)
	if err != nil {
		return ExpenseByTagReport{}, err
	}
	var r ExpenseByTagReport
	if err := env.decodeData(&r.Rows); err != nil {
		return ExpenseByTagReport{}, err
	}
	if len(env.TotaleGenerale) > 0 && string(env.TotaleGenerale) != "null" {
		var total decimal.Decimal
		if err := json.Unmarshal(env.TotaleGenerale, &total); err != nil {
			return ExpenseByTagReport{}, fmt.Errorf("decode totale_generale: %w", err)
		}
		r.TotaleGenerale = total
	} else {
		for _, row := range r.Rows {
			r.TotaleGenerale = r.TotaleGenerale.Add(row.Totale)
		}
	}
	return r, nil
}

func (c *Client) IncomeVsExpense(ctx context.Context, q ChartQuery) (IncomeVsExpenseReport, error) {
	env, err := c.do(ctx, http.MethodGet, chartsPath+"/income-vs-expense", q.Values(), nil)
	if err != nil {
		return IncomeVsExpenseReport{}, err
	}
	var r IncomeVsExpenseReport
	if err := env.decodeData(&r.Rows); err != nil {
		return IncomeVsExpenseReport{}, err
	}
	if err := decodeOptional(env.Statistiche, &r.Totals); err != nil {
		return IncomeVsExpenseReport{}, err
	}
	return r, nil
}

// BalanceOverTime requires an account; the server rejects requests without one.
func (c *Client) BalanceOverTime(ctx context.Context, q ChartQuery) (BalanceReport, error) {
	env, err := c.do(ctx, http.MethodGet, chartsPath+"/balance-over-time", q.Values(), nil)
	if err != nil {
		return BalanceReport{}, err
	}
	r := BalanceReport{Account: env.Conto}
	if err := env.decodeData(&r.Rows); err != nil {
		return BalanceReport{}, err
	}
	if err := decodeOptional(env.Statistiche, &r.Stats); err != nil {
		return BalanceReport{}, err
	}
	return r, nil
}

func decodeOptional(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode statistiche: %w", err)
	}
	return nil
}
