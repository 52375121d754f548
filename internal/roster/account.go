package roster

import "github.com/rs/xid"

// Status tracks where an account currently is in its lifecycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Profile contains the public player data returned by the remote service.
type Profile struct {
	FID            int64  `json:"fid"`
	Nickname       string `json:"nickname"`
	KingdomID      int    `json:"kid"`
	StoveLevel     int    `json:"stove_lv"`
	StoveLevelIcon string `json:"stove_lv_content"`
	AvatarURL      string `json:"avatar_image"`
	TotalRecharge  int64  `json:"total_recharge_amount"`
}

// Account is one tracked game account. ID is the sole key for updates and
// deletion; AccountNumber is the external identifier and is unique among
// live accounts.
type Account struct {
	ID            string   `json:"id"`
	AccountNumber string   `json:"account_number"`
	Status        Status   `json:"status"`
	LastResult    string   `json:"last_result,omitempty"`
	Profile       *Profile `json:"profile,omitempty"`
	Validated     bool     `json:"validated"`
}

// NewAccount creates an account in validating status with a fresh id.
func NewAccount(accountNumber string) Account {
	return Account{
		ID:            xid.New().String(),
		AccountNumber: accountNumber,
		Status:        StatusValidating,
	}
}
