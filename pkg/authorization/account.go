package authorization

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opencourt/platform/pkg/common/config"
	"golang.org/x/oauth2/clientcredentials"
)

// AccountClient asks the account-management service whether a user holds
// clearance for a (list type, sensitivity) pair. Outbound calls authenticate
// with a client-credentials token when a token URL is configured; local
// deployments run without one.
type AccountClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAccountClient(cfg *config.Config) *AccountClient {
	client := &http.Client{Timeout: cfg.AccountTimeout}
	if cfg.AccountTokenURL != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.AccountClientID,
			ClientSecret: cfg.AccountClientSecret,
			TokenURL:     cfg.AccountTokenURL,
		}
		client = creds.Client(context.Background())
		client.Timeout = cfg.AccountTimeout
	}
	return &AccountClient{
		baseURL:    cfg.AccountBaseURL,
		httpClient: client,
	}
}

type authorisationRequest struct {
	UserID      string `json:"user_id"`
	ListType    string `json:"list_type"`
	Sensitivity string `json:"sensitivity"`
}

type authorisationResponse struct {
	Authorized bool `json:"authorized"`
}

func (c *AccountClient) Authorized(ctx context.Context, userID, listType, sensitivity string) (bool, error) {
	body, err := json.Marshal(authorisationRequest{
		UserID:      userID,
		ListType:    listType,
		Sensitivity: sensitivity,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/account/authorisation", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("account authorisation call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("account authorisation call: status %d", resp.StatusCode)
	}

	var result authorisationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("account authorisation response: %w", err)
	}
	return result.Authorized, nil
}
