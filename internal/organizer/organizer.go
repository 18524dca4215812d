package organizer

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"sleeve/internal/config"
	"sleeve/internal/logging"
	"sleeve/internal/queue"
	"sleeve/internal/services"
	"sleeve/internal/textutil"
)

// extensionPattern recognizes image extensions in a URL path, tolerating a
// trailing query string.
var extensionPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|tif|tiff)($|\?)`)

const defaultExtension = ".jpg"

// unsortedGenre is the directory for rows without a genre column.
const unsortedGenre = "Unsorted"

// Organizer writes cover files under the configured output directory.
type Organizer struct {
	outputDir string
	overwrite bool
	logger    *slog.Logger
}

// New constructs an Organizer from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	return &Organizer{
		outputDir: cfg.Paths.OutputDir,
		overwrite: cfg.Output.OverwriteExisting,
		logger:    logging.WithComponent(logger, "organizer"),
	}
}

// ExtensionFromURL extracts the image extension from a URL, defaulting to
// .jpg when the URL does not carry a recognizable one.
func ExtensionFromURL(rawURL string) string {
	match := extensionPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return defaultExtension
	}
	return "." + strings.ToLower(match[1])
}

// CoverPath returns the output path for an item's cover fetched from
// imageURL: <output>/<genre>/<artist>__<album>__<year>.<ext> with every
// component made filesystem safe.
func (o *Organizer) CoverPath(item *queue.Item, imageURL string) string {
	genre := textutil.Slug(item.Genre)
	if genre == "" {
		genre = unsortedGenre
	}

	year := "NA"
	if item.Year != 0 {
		year = strconv.Itoa(item.Year)
	}
	name := textutil.Slug(item.Artist) + "__" + textutil.Slug(item.Album) + "__" + year + ExtensionFromURL(imageURL)
	return filepath.Join(o.outputDir, genre, name)
}

// Exists reports whether the target path is already occupied and whether the
// organizer would keep it. A kept file means the caller should not download.
func (o *Organizer) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return !o.overwrite, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, services.Wrap(services.ErrConfiguration, "organizer", "stat", "checking existing cover", err)
}

// Save writes the image bytes to path, creating the genre directory on
// demand. The write goes through a temp file so a crash cannot leave a
// truncated cover behind.
func (o *Organizer) Save(path string, data []byte) error {
	if len(data) == 0 {
		return services.Wrap(services.ErrParse, "organizer", "save", "refusing to write empty image", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "organizer", "save", "creating genre directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cover-*")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "organizer", "save", "creating temp file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrConfiguration, "organizer", "save", "writing image", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrConfiguration, "organizer", "save", "closing temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrConfiguration, "organizer", "save", "placing cover", err)
	}

	o.logger.Info("saved cover",
		logging.String("path", path),
		logging.Int("bytes", len(data)))
	return nil
}
