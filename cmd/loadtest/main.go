package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

const sessionHeader = "X-Session-ID"

type loadMode string

const (
	// modeBrowse — каталог, добавление товара, просмотр корзины.
	modeBrowse loadMode = "browse"
	// modeCart — все мутации корзины по очереди.
	modeCart loadMode = "cart"
	// modeCheckout — добавление товара и оформление самовывоза.
	modeCheckout loadMode = "checkout"
)

type config struct {
	baseURL     string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	mode        loadMode
	productID   string
	pharmacyID  string
	sessionTag  string
	outputPath  string
}

func parseConfig(args []string) (config, error) {
	var cfg config
	var modeValue string

	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.baseURL, "url", "http://localhost:8080", "cart-service HTTP base URL")
	fs.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	fs.DurationVar(&cfg.duration, "duration", 0, "optional time-based run duration (e.g. 10m, 15m)")
	fs.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	fs.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	fs.StringVar(&modeValue, "mode", string(modeBrowse), "load mode: browse | cart | checkout")
	fs.StringVar(&cfg.productID, "product", "p1", "product id to put into carts")
	fs.StringVar(&cfg.pharmacyID, "pharmacy", "ph-1", "pickup pharmacy id for checkout mode")
	fs.StringVar(&cfg.sessionTag, "session-tag", "load", "session id prefix")
	fs.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode
	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")

	if _, err := url.ParseRequestURI(cfg.baseURL); err != nil {
		return cfg, fmt.Errorf("invalid url: %w", err)
	}
	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.duration > 0 && cfg.totalSet && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if strings.TrimSpace(cfg.productID) == "" {
		return cfg, errors.New("product is required")
	}
	if cfg.mode == modeCheckout && strings.TrimSpace(cfg.pharmacyID) == "" {
		return cfg, errors.New("pharmacy is required in checkout mode")
	}
	if strings.TrimSpace(cfg.sessionTag) == "" {
		return cfg, errors.New("session-tag is required")
	}

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeBrowse:
		return modeBrowse, nil
	case modeCart:
		return modeCart, nil
	case modeCheckout:
		return modeCheckout, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

// apiClient — тонкий клиент HTTP API корзины.
type apiClient struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	col     *collector
}

// call выполняет запрос от имени сессии и учитывает его в collector под именем step.
func (c *apiClient) call(step, method, path, session string, body any, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set(sessionHeader, session)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.col.record(step, time.Since(start), 0)
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	c.col.record(step, time.Since(start), resp.StatusCode)

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s: unexpected status %d", step, resp.StatusCode)
	}
	return nil
}

func runScenario(client *apiClient, cfg config, index int, runID string) error {
	scenarioStart := time.Now()
	status := http.StatusOK
	defer func() {
		client.col.record(scenarioStep, time.Since(scenarioStart), status)
	}()

	err := scenarioSteps(client, cfg, fmt.Sprintf("%s-%s-%d", cfg.sessionTag, runID, index))
	if err != nil {
		status = http.StatusInternalServerError
	}
	return err
}

func scenarioSteps(client *apiClient, cfg config, session string) error {
	item := "/api/v1/cart/items/" + url.PathEscape(cfg.productID)
	add := func() error {
		return client.call("AddItem", http.MethodPost, "/api/v1/cart/items", session,
			map[string]string{"product_id": cfg.productID}, http.StatusCreated)
	}

	switch cfg.mode {
	case modeBrowse:
		if err := client.call("ListProducts", http.MethodGet, "/api/v1/products", session, nil, http.StatusOK); err != nil {
			return err
		}
		if err := add(); err != nil {
			return err
		}
		return client.call("GetCart", http.MethodGet, "/api/v1/cart", session, nil, http.StatusOK)
	case modeCart:
		if err := add(); err != nil {
			return err
		}
		if err := add(); err != nil {
			return err
		}
		if err := client.call("UpdateQuantity", http.MethodPut, item, session, map[string]int{"quantity": 5}, http.StatusOK); err != nil {
			return err
		}
		if err := client.call("GetSummary", http.MethodGet, "/api/v1/cart/summary", session, nil, http.StatusOK); err != nil {
			return err
		}
		if err := client.call("RemoveItem", http.MethodDelete, item, session, nil, http.StatusOK); err != nil {
			return err
		}
		return client.call("ClearCart", http.MethodDelete, "/api/v1/cart", session, nil, http.StatusOK)
	case modeCheckout:
		if err := add(); err != nil {
			return err
		}
		return client.call("PlaceOrder", http.MethodPost, "/api/v1/checkout", session,
			map[string]string{"pharmacy_id": cfg.pharmacyID}, http.StatusCreated)
	default:
		return fmt.Errorf("unsupported mode: %s", cfg.mode)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

// run прогоняет сценарии пулом воркеров и возвращает отчёт.
func run(cfg config, httpClient *http.Client) report {
	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	client := &apiClient{
		http:    httpClient,
		baseURL: cfg.baseURL,
		timeout: cfg.timeout,
		col:     newCollector(),
	}

	jobs := make(chan int, cfg.concurrency*2)
	var wg sync.WaitGroup
	for worker := 0; worker < cfg.concurrency; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				_ = runScenario(client, cfg, id, runID)
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	return client.col.buildReport(startedAt, time.Since(startedAt))
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.concurrency
	result := run(cfg, &http.Client{Transport: transport})

	printReport(os.Stdout, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}
