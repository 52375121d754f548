package century

import (
	"context"
	"fmt"
)

// RedeemCode submits a gift code for the given account number. A nil error
// means the code was claimed; a *RedeemError carries the classified failure
// (already claimed, code not found, quota exceeded, expired) with a
// user-facing message.
func (c *Client) RedeemCode(ctx context.Context, accountNumber, code string) error {
	params := map[string]string{
		"fid":          accountNumber,
		"cdk":          code,
		"captcha_code": "",
		"time":         timestamp(),
	}

	env, err := c.postForm(ctx, "/api/gift_code", params)
	if err != nil {
		return fmt.Errorf("failed to redeem code for %s: %w", accountNumber, err)
	}

	if env.Code != 0 {
		ec := int(env.ErrCode)
		return &RedeemError{Code: env.Code, ErrCode: ec, Msg: redeemMessage(ec, env.Msg)}
	}

	return nil
}
