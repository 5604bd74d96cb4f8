package shared

import "github.com/shopspring/decimal"

// Money columns are NUMERIC(10, 2).
const (
	MoneyScale     = 2
	MoneyPrecision = 10
)

var moneyLimit = decimal.New(1, MoneyPrecision-MoneyScale)

// CheckMoney rejects amounts the store would round or overflow
func CheckMoney(amount decimal.Decimal) error {
	if amount.Exponent() < -MoneyScale && !amount.Equal(amount.Truncate(MoneyScale)) {
		return ErrAmountPrecision
	}
	if amount.Abs().GreaterThanOrEqual(moneyLimit) {
		return ErrAmountPrecision
	}
	return nil
}
