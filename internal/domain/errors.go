package domain

import "errors"

// ErrInvalidInput 错误：订单参数非法（数量、符号或方向）
var ErrInvalidInput = errors.New("invalid order input")

// ErrQuoteUnavailable 错误：无法获取该标的的当前报价
var ErrQuoteUnavailable = errors.New("quote unavailable")

// ErrInsufficientFunds 错误：现金余额不足
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInsufficientShares 错误：持仓数量不足
var ErrInsufficientShares = errors.New("insufficient shares")

// ErrRateLimited 错误：外部行情源限流
var ErrRateLimited = errors.New("rate limited by feed")
