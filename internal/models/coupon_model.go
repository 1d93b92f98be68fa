package models

// Coupon grants a tier when redeemed.
type Coupon struct {
	Code        string `json:"code" yaml:"code"`
	Active      bool   `json:"active" yaml:"active"`
	Tier        Tier   `json:"tier" yaml:"tier"`
	Description string `json:"description" yaml:"description"`
}
