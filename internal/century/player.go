package century

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ggyhrr/gift-code/internal/roster"
)

// GetPlayer looks up a player's public profile by account number.
// A failure carries the service's classified error code; err_code 40004
// means the account does not exist.
func (c *Client) GetPlayer(ctx context.Context, accountNumber string) (*roster.Profile, error) {
	params := map[string]string{
		"fid":  accountNumber,
		"time": timestamp(),
	}

	env, err := c.postForm(ctx, "/api/player", params)
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", accountNumber, err)
	}

	if env.Code != 0 {
		return nil, &APIError{Code: env.Code, ErrCode: int(env.ErrCode), Msg: env.Msg}
	}

	// An array (or missing) payload means no player data for this account number.
	if len(env.Data) == 0 || env.Data[0] == '[' || string(env.Data) == "null" {
		return nil, &APIError{Code: env.Code, ErrCode: int(env.ErrCode), Msg: orDefault(env.Msg, "player not found")}
	}

	var profile roster.Profile
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode player data: %w", err)
	}

	return &profile, nil
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
