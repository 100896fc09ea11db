package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/config"
	"github.com/jageocoder/abr-geocoder/helpers/utils"
	"github.com/jageocoder/abr-geocoder/internal/fetch"
)

// ckanPackageShow is the subset of a CKAN package_show response the
// download command needs: the list of resource download URLs for the
// requested dataset (§4.4, "Data source (added)").
type ckanPackageShow struct {
	Result struct {
		Resources []ckanResource `json:"resources"`
	} `json:"result"`
}

type ckanResource struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func newDownloadCmd() *cobra.Command {
	var source string
	var useCache bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Fetch or refresh reference data for --resource-id",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			if config.C.ResourceID == "" {
				return fmt.Errorf("download: --resource-id is required")
			}
			if source == "" {
				source = "https://catalog.registries.go.jp/api/3/action/package_show?id=" + config.C.ResourceID
			}

			runID := utils.GenerateShortID()
			logger = logger.With(zap.String("run_id", runID))

			cacheDir := filepath.Join(config.C.DataDir, "cache")
			fab, err := fetch.New(logger, http.DefaultClient, cacheDir, config.C.Cache.L1Size, fetch.RetryPolicy{
				MaxAttempts: config.C.Retry.MaxAttempts,
				DelayMin:    config.C.Retry.DelayMin,
				DelayMax:    config.C.Retry.DelayMax,
			})
			if err != nil {
				return fmt.Errorf("download: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			resources, err := resolveResources(ctx, source)
			if err != nil {
				_ = fab.Close(ctx)
				return fmt.Errorf("download: resolve resources: %w", err)
			}
			if len(resources) == 0 {
				_ = fab.Close(ctx)
				return fmt.Errorf("download: no resources found for %s", config.C.ResourceID)
			}

			for i, r := range resources {
				id := r.ID
				if id == "" {
					id = fmt.Sprintf("%s#%d", config.C.ResourceID, i)
				}
				fab.Submit(fetch.DownloadRequest{
					ID:       id,
					URL:      r.URL,
					Final:    i == len(resources)-1,
					UseCache: useCache,
				})
			}

			var failed int
			for res := range fab.Results() {
				if res.Err != nil {
					logger.Error("resource download failed", zap.String("request", res.Request.ID), zap.Error(res.Err))
					failed++
					continue
				}
				fmt.Println(res.Path)
			}

			if err := fab.Close(ctx); err != nil {
				return fmt.Errorf("download: %w", err)
			}
			if failed > 0 {
				return fmt.Errorf("download: %d of %d resources failed", failed, len(resources))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "CKAN package_show URL to resolve resources from (defaults to the registry's public catalog)")
	cmd.Flags().BoolVar(&useCache, "use-cache", true, "serve from the content-addressed cache when present")
	return cmd
}

// resolveResources calls a CKAN package_show endpoint and returns every
// resource attached to the package that carries a download URL.
func resolveResources(ctx context.Context, source string) ([]ckanResource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, source)
	}

	var pkg ckanPackageShow
	if err := json.NewDecoder(resp.Body).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("decode package_show response: %w", err)
	}

	resources := make([]ckanResource, 0, len(pkg.Result.Resources))
	for _, r := range pkg.Result.Resources {
		if r.URL != "" {
			resources = append(resources, r)
		}
	}
	return resources, nil
}
