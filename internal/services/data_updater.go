package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/askmiles/miles-server/internal/metrics"
)

const (
	updaterTimeout   = 10 * time.Second
	downloadCacheFile = ".download_cache.json"
)

// datasetFiles maps export dataset types to their local filenames.
var datasetFiles = []struct {
	Type     string
	Filename string
}{
	{"credit_cards", "credit_cards.json"},
	{"transfer_partners", "transfer_partners.json"},
	{"valuations", "valuations.json"},
}

// DataUpdater keeps the local dataset files in sync with the export API.
// It compares the server's export version against a local cache, downloads
// only changed datasets, validates their shape before replacing the files,
// and reloads the in-memory snapshot after any change. Requests are
// rate-limited so scheduled checks never burst against the API.
type DataUpdater struct {
	client        *http.Client
	limiter       *rate.Limiter
	apiURL        string
	dataDir       string
	data          *CardDataService
	checkInterval time.Duration
}

type exportStatus struct {
	Version  string                   `json:"version"`
	Datasets map[string]datasetStatus `json:"datasets"`
}

type datasetStatus struct {
	Available    *bool  `json:"available"`
	LastModified string `json:"last_modified"`
}

type downloadCache struct {
	Version  string                          `json:"version"`
	Datasets map[string]cachedDatasetVersion `json:"datasets"`
}

type cachedDatasetVersion struct {
	LastModified string `json:"last_modified"`
}

func NewDataUpdater(apiURL, dataDir string, data *CardDataService, checkInterval time.Duration) *DataUpdater {
	return &DataUpdater{
		client:        &http.Client{Timeout: updaterTimeout},
		limiter:       rate.NewLimiter(rate.Every(time.Second), 2),
		apiURL:        apiURL,
		dataDir:       dataDir,
		data:          data,
		checkInterval: checkInterval,
	}
}

// Start runs the periodic update loop until the context is cancelled. One
// check runs immediately on startup.
func (d *DataUpdater) Start(ctx context.Context) {
	log.Printf("Data updater started: checking every %s", d.checkInterval)

	if err := d.CheckForUpdates(ctx); err != nil {
		log.Printf("Warning: data update check failed: %v", err)
	}

	ticker := time.NewTicker(d.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Data updater stopping...")
			return
		case <-ticker.C:
			if err := d.CheckForUpdates(ctx); err != nil {
				log.Printf("Warning: scheduled data update failed: %v", err)
			}
		}
	}
}

// CheckForUpdates performs one update cycle. A failure to reach the API is
// not fatal: the service keeps running on the cached dataset files.
func (d *DataUpdater) CheckForUpdates(ctx context.Context) error {
	if d.apiURL == "" {
		return nil
	}

	start := time.Now()
	defer func() {
		metrics.DataUpdateDuration.Observe(time.Since(start).Seconds())
	}()

	if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	cache := d.loadCache()

	status, err := d.fetchStatus(ctx)
	if err != nil {
		log.Printf("Data updater service unreachable, using cached data files: %v", err)
		d.reportMissingFiles()
		return nil
	}

	if status.Version != "" && status.Version == cache.Version {
		log.Printf("Data files are up-to-date (version: %.8s)", status.Version)
		return nil
	}

	updated := 0
	for _, dataset := range datasetFiles {
		info := status.Datasets[dataset.Type]
		if info.Available != nil && !*info.Available {
			metrics.DataDownloadsTotal.WithLabelValues(dataset.Type, "skipped").Inc()
			continue
		}

		filePath := filepath.Join(d.dataDir, dataset.Filename)
		cached := cache.Datasets[dataset.Type]
		if info.LastModified != "" && info.LastModified == cached.LastModified && fileExists(filePath) {
			metrics.DataDownloadsTotal.WithLabelValues(dataset.Type, "skipped").Inc()
			continue
		}

		wrote, err := d.downloadDataset(ctx, dataset.Type, filePath, cached.LastModified)
		if err != nil {
			log.Printf("Warning: failed to download %s: %v", dataset.Filename, err)
			metrics.DataDownloadsTotal.WithLabelValues(dataset.Type, "failed").Inc()
			continue
		}

		if cache.Datasets == nil {
			cache.Datasets = make(map[string]cachedDatasetVersion)
		}
		cache.Datasets[dataset.Type] = cachedDatasetVersion{LastModified: info.LastModified}

		if !wrote {
			// 304 from the server: the file on disk is already current.
			metrics.DataDownloadsTotal.WithLabelValues(dataset.Type, "skipped").Inc()
			continue
		}
		metrics.DataDownloadsTotal.WithLabelValues(dataset.Type, "updated").Inc()
		updated++
	}

	if status.Version != "" {
		cache.Version = status.Version
	}
	d.saveCache(cache)

	if updated > 0 {
		log.Printf("Downloaded %d updated dataset(s), reloading snapshot", updated)
		if err := d.data.Reload(); err != nil {
			return fmt.Errorf("failed to reload snapshot: %w", err)
		}
	}

	return nil
}

func (d *DataUpdater) fetchStatus(ctx context.Context) (*exportStatus, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := d.apiURL + "/api/public/exports/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var status exportStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}
	return &status, nil
}

// downloadDataset fetches one dataset export. It reports whether a new file
// was written: a 304 Not-Modified answer leaves the existing file alone.
func (d *DataUpdater) downloadDataset(ctx context.Context, datasetType, filePath, cachedLastModified string) (bool, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return false, err
	}

	url := d.apiURL + "/api/public/exports/" + datasetType
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	if cachedLastModified != "" {
		if t, err := time.Parse(time.RFC3339, cachedLastModified); err == nil {
			req.Header.Set("If-Modified-Since", t.UTC().Format(http.TimeFormat))
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("download returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	if !validateDataset(datasetType, body) {
		return false, fmt.Errorf("%s failed validation, keeping existing file", datasetType)
	}

	if err := os.WriteFile(filePath, body, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", filePath, err)
	}

	log.Printf("Updated %s", filepath.Base(filePath))
	return true, nil
}

// validateDataset sanity-checks a downloaded document's shape before it is
// allowed to replace the existing file.
func validateDataset(datasetType string, body []byte) bool {
	switch datasetType {
	case "credit_cards":
		var cards []map[string]json.RawMessage
		if err := json.Unmarshal(body, &cards); err != nil {
			return false
		}
		if len(cards) > 0 {
			_, hasName := cards[0]["card_name"]
			_, hasIssuer := cards[0]["issuer"]
			if !hasName || !hasIssuer {
				return false
			}
		}
		return true
	case "transfer_partners":
		var table map[string]json.RawMessage
		return json.Unmarshal(body, &table) == nil
	case "valuations":
		var doc struct {
			Valuations map[string]json.RawMessage `json:"valuations"`
		}
		if err := json.Unmarshal(body, &doc); err != nil {
			return false
		}
		return doc.Valuations != nil
	}
	return false
}

func (d *DataUpdater) loadCache() downloadCache {
	var cache downloadCache
	data, err := os.ReadFile(filepath.Join(d.dataDir, downloadCacheFile))
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return downloadCache{}
	}
	return cache
}

func (d *DataUpdater) saveCache(cache downloadCache) {
	if cache.Version == "" && len(cache.Datasets) == 0 {
		return
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(d.dataDir, downloadCacheFile), data, 0o644); err != nil {
		log.Printf("Warning: could not save download cache: %v", err)
	}
}

func (d *DataUpdater) reportMissingFiles() {
	for _, dataset := range datasetFiles {
		if !fileExists(filepath.Join(d.dataDir, dataset.Filename)) {
			log.Printf("Warning: offline and missing data file: %s", dataset.Filename)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
