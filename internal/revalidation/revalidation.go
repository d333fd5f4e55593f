package revalidation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	"golang.org/x/sync/errgroup"
)

const (
	vercelApiUrl = "https://api.vercel.com/v6/deployments"

	maxRetries    = 3
	maxConcurrent = 5
)

// Revalidator asks the deployed public site to rebuild pages after content changes.
type Revalidator struct {
	c       *Config
	client  *http.Client
	apiUrl  string
	backoff time.Duration
}

type Config struct {
	ProjectId        string        `mapstructure:"project_id"`
	VercelApiToken   string        `mapstructure:"vercel_api_token"`
	RevalidateSecret string        `mapstructure:"revalidate_secret"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
	// Deployments are always revalidated in addition to the ones listed by Vercel.
	Deployments []string `mapstructure:"deployments"`
}

// Enabled reports whether there is anything to revalidate.
func (c *Config) Enabled() bool {
	return c != nil && c.RevalidateSecret != "" && (c.ProjectId != "" || len(c.Deployments) > 0)
}

func New(c *Config) *Revalidator {
	timeout := c.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Revalidator{
		c:       c,
		client:  &http.Client{Timeout: timeout},
		apiUrl:  vercelApiUrl,
		backoff: time.Second,
	}
}

func (v *Revalidator) getDeployments(ctx context.Context) ([]dto.Deployment, error) {
	if v.c.ProjectId == "" {
		return nil, nil
	}
	url := fmt.Sprintf("%s?projectId=%s&state=READY&limit=3", v.apiUrl, v.c.ProjectId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request to %s: %w", url, err)
	}

	req.Header.Add("Authorization", "Bearer "+v.c.VercelApiToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}
	var result dto.DeploymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode deployments response from %s: %w", url, err)
	}
	return result.Deployments, nil
}

func (v *Revalidator) revalidate(ctx context.Context, deploymentURL string, data *dto.RevalidationData) error {
	u, err := url.Parse(deploymentURL)
	if err != nil || u.Host == "" {
		u = &url.URL{Scheme: "https", Host: deploymentURL}
	}
	u.Path = "/api/revalidate"
	q := u.Query()
	q.Set("secret", v.c.RevalidateSecret)
	u.RawQuery = q.Encode()
	apiUrl := u.String()

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal revalidation data for deployment %s: %w", deploymentURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiUrl, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create POST request to %s: %w", deploymentURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to POST to %s: %w", deploymentURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body from %s: %w", deploymentURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revalidate failed for %s (status %d): %s", deploymentURL, resp.StatusCode, string(body))
	}

	slog.Default().InfoContext(ctx, "revalidated", "deploymentURL", deploymentURL)
	return nil
}

// RevalidateAll notifies every known deployment, retrying each one a few times.
func (v *Revalidator) RevalidateAll(ctx context.Context, data *dto.RevalidationData) error {
	deployments, err := v.getDeployments(ctx)
	if err != nil {
		return fmt.Errorf("failed to get deployments: %w", err)
	}
	for _, d := range v.c.Deployments {
		deployments = append(deployments, dto.Deployment{URL: d})
	}

	errs := make([]error, len(deployments))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, d := range deployments {
		g.Go(func() error {
			for attempt := 1; attempt <= maxRetries; attempt++ {
				err := v.revalidate(ctx, d.URL, data)
				if err == nil {
					errs[i] = nil
					return nil
				}
				errs[i] = err
				slog.Default().ErrorContext(ctx, "revalidation failed",
					slog.String("deploymentURL", d.URL),
					slog.Int("attempt", attempt),
					slog.String("err", err.Error()),
				)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Duration(attempt) * v.backoff):
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
