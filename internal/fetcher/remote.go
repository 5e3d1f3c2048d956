package fetcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RemoteSource is one configured remote raw file.
type RemoteSource struct {
	Name     string `mapstructure:"name" yaml:"name"`
	URL      string `mapstructure:"url" yaml:"url"`
	Filename string `mapstructure:"filename" yaml:"filename"`
}

// DefaultRemoteSources lists the registries fetched when none are
// configured.
func DefaultRemoteSources() []RemoteSource {
	return []RemoteSource{
		{
			Name:     "alliance_providers_pdf",
			URL:      "https://www.alliancehealth.co.zw/sites/default/files/attachments/Service%20Provider%20List%202020.pdf",
			Filename: "alliance_provider_list_2020.pdf",
		},
		{
			Name:     "mcaz_premises_html",
			URL:      "https://onlineservices.mcaz.co.zw/onlineregister/frmPremisesRegister.aspx",
			Filename: "mcaz_premises_register.html",
		},
	}
}

// FetchAll downloads every remote source into rawDir. Files already on
// disk are kept unless force is set; a failed download is logged and the
// remaining sources still run.
func (f *HTTPFetcher) FetchAll(ctx context.Context, rawDir string, sources []RemoteSource, force bool) (int, error) {
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return 0, eris.Wrap(err, "fetcher: create raw dir")
	}

	log := zap.L()
	fetched := 0
	for _, src := range sources {
		dest := filepath.Join(rawDir, src.Filename)
		if !force {
			if _, err := os.Stat(dest); err == nil {
				log.Info("fetcher: already present, skipping",
					zap.String("source", src.Name),
					zap.String("file", src.Filename),
				)
				continue
			}
		}

		n, err := f.DownloadToFile(ctx, src.URL, dest)
		if err != nil {
			log.Warn("fetcher: download failed",
				zap.String("source", src.Name),
				zap.String("url", src.URL),
				zap.Error(err),
			)
			continue
		}
		log.Info("fetcher: downloaded",
			zap.String("source", src.Name),
			zap.String("file", src.Filename),
			zap.Int64("bytes", n),
		)
		fetched++
	}
	return fetched, nil
}
