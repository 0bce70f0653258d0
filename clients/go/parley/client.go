// Package parley provides a client for the Parley signed-chat protocol.
// Messages are sealed locally: the private key never leaves the machine.
package parley

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/envelope"
	"github.com/parley-protocol/parley/internal/models"
	"github.com/parley-protocol/parley/internal/verify"
)

// Client is a Parley API client.
type Client struct {
	BaseURL       string
	ConfigDir     string
	ParticipantID string
	PrivateKey    *rsa.PrivateKey
	HTTPClient    *http.Client
}

// Config holds participant configuration.
type Config struct {
	ID        string `json:"id"`
	PublicKey string `json:"public_key"`
}

// NewClient creates a new Parley client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	configDir := os.Getenv("PARLEY_CONFIG")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".parley")
	}

	c := &Client{
		BaseURL:    baseURL,
		ConfigDir:  configDir,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	_ = c.LoadConfig()
	return c
}

// LoadConfig loads participant credentials from disk.
func (c *Client) LoadConfig() error {
	configFile := filepath.Join(c.ConfigDir, "participant.json")
	keyFile := filepath.Join(c.ConfigDir, "private.pem")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return err
	}

	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return err
	}

	priv, err := crypto.DecodePrivateKeyPEM(keyData)
	if err != nil {
		return err
	}

	c.ParticipantID = config.ID
	c.PrivateKey = priv

	return nil
}

// SaveConfig saves participant credentials to disk.
func (c *Client) SaveConfig() error {
	if err := os.MkdirAll(c.ConfigDir, 0700); err != nil {
		return err
	}

	pubPEM, err := crypto.EncodePublicKeyPEM(&c.PrivateKey.PublicKey)
	if err != nil {
		return err
	}

	config := Config{
		ID:        c.ParticipantID,
		PublicKey: string(pubPEM),
	}

	data, _ := json.MarshalIndent(config, "", "  ")
	if err := os.WriteFile(filepath.Join(c.ConfigDir, "participant.json"), data, 0600); err != nil {
		return err
	}

	privPEM, err := crypto.EncodePrivateKeyPEM(c.PrivateKey)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.ConfigDir, "private.pem"), privPEM, 0600)
}

// GenerateKeypair generates a new RSA keypair.
func (c *Client) GenerateKeypair() error {
	priv, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	c.PrivateKey = priv
	return nil
}

// RegisterResponse is the registration response.
type RegisterResponse struct {
	ID         string `json:"id"`
	ProfileURL string `json:"profile_url"`
}

// Register registers this client's public key under the given name. The
// returned participant id becomes the client's key reference.
func (c *Client) Register(name string) (*RegisterResponse, error) {
	if c.PrivateKey == nil {
		if err := c.GenerateKeypair(); err != nil {
			return nil, err
		}
	}

	pubPEM, err := crypto.EncodePublicKeyPEM(&c.PrivateKey.PublicKey)
	if err != nil {
		return nil, err
	}

	var resp RegisterResponse
	err = c.post("/register", map[string]string{
		"public_key": string(pubPEM),
		"name":       name,
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.ParticipantID = resp.ID
	if err := c.SaveConfig(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostMessageResponse is the accepted-message response.
type PostMessageResponse struct {
	ID        string           `json:"id"`
	Timestamp int64            `json:"ts"`
	Reply     *models.Envelope `json:"reply,omitempty"`
}

// PostMessage seals body with the local private key and posts the envelope.
func (c *Client) PostMessage(body string) (*PostMessageResponse, error) {
	if c.ParticipantID == "" || c.PrivateKey == nil {
		return nil, fmt.Errorf("not registered: run Register first")
	}

	msg := models.Message{
		Sender:    c.ParticipantID,
		Body:      body,
		Kind:      models.KindUser,
		Timestamp: time.Now().UnixMilli(),
	}

	env, err := envelope.Seal(msg, c.ParticipantID, c.PrivateKey)
	if err != nil {
		return nil, err
	}

	var resp PostMessageResponse
	if err := c.post("/messages", env, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryEntry is a stored envelope plus the server's verdict for it.
type HistoryEntry struct {
	models.Envelope
	Verdict verify.Verdict `json:"verdict"`
}

// MessagesResponse is the message history response.
type MessagesResponse struct {
	Messages []HistoryEntry `json:"messages"`
	HasMore  bool           `json:"has_more"`
}

// GetMessages retrieves recent message history.
func (c *Client) GetMessages(limit int, before int64) (*MessagesResponse, error) {
	path := "/messages?limit=" + strconv.Itoa(limit)
	if before > 0 {
		path += "&before=" + strconv.FormatInt(before, 10)
	}

	var resp MessagesResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify asks the server to re-check an envelope's signature.
func (c *Client) Verify(env *models.Envelope) (*verify.Result, error) {
	req := map[string]interface{}{
		"sender": env.Sender,
		"body":   env.Body,
		"kind":   env.Kind,
		"ts":     env.Timestamp,
		"sig":    env.Signature,
		"key_id": env.KeyID,
	}

	var result verify.Result
	if err := c.post("/verify", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// HealthResponse is the health endpoint response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health checks the server health.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get("/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ParticipantID != "" {
		req.Header.Set("X-Parley-Participant", c.ParticipantID)
	}

	return c.do(req, out)
}

func (c *Client) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if c.ParticipantID != "" {
		req.Header.Set("X-Parley-Participant", c.ParticipantID)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, body)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("request failed (%d): %s", resp.StatusCode, apiErr.Error)
		}
		// The verification endpoint reports malformed input with a verdict
		// body rather than an error object.
		if out != nil && json.Unmarshal(body, out) == nil {
			return nil
		}
		return fmt.Errorf("request failed (%d): %s", resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
