package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ecobin/ecobin/internal/httpc"
	"github.com/ecobin/ecobin/pkg/rewards"
)

// MintResult is the server's answer to a reward mint request.
type MintResult struct {
	Token     string `json:"token"`
	Material  string `json:"material"`
	Points    int    `json:"points"`
	RedeemURL string `json:"redeem_url"`
	QRURL     string `json:"qr_url"`
}

// RewardClient mints reward tokens through the server API.
type RewardClient struct {
	url    string
	token  string
	client *http.Client
}

// NewRewardClient creates a client for the reward endpoint.
func NewRewardClient(url, apiToken string) *RewardClient {
	return &RewardClient{
		url:    url,
		token:  apiToken,
		client: httpc.Client,
	}
}

// Mint requests a reward token for the material.
func (c *RewardClient) Mint(ctx context.Context, material rewards.Material) (*MintResult, error) {
	body, err := json.Marshal(map[string]string{"material": string(material)})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reward request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reward request: unexpected status %d", resp.StatusCode)
	}

	var result MintResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode reward response: %w", err)
	}
	return &result, nil
}
