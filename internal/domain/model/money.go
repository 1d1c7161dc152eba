package model

import "github.com/shopspring/decimal"

// Moneyはレスポンス用の金額。JSONでは小数2桁の数値で出す（10.00）。
type Money decimal.Decimal

func NewMoney(d decimal.Decimal) Money {
	return Money(d.Round(2))
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// 数値でも文字列でも受け付ける
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}
