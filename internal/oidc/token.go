package oidc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// claimsToken exposes an already-decoded claims map through middleware.Token.
type claimsToken struct {
	claims map[string]interface{}
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

var ErrNotAccessToken = errors.New("token is not an access token")

// checkAccessToken enforces token_use=access and, when clientID is set, a matching client_id.
func checkAccessToken(claims map[string]interface{}, clientID string) error {
	if use, _ := claims["token_use"].(string); use != "access" {
		return ErrNotAccessToken
	}
	if clientID != "" {
		if cid, _ := claims["client_id"].(string); cid != clientID {
			return fmt.Errorf("unexpected client_id %q", cid)
		}
	}
	return nil
}
