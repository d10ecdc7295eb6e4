package downloader

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
)

const (
	DefaultFormat = "bestvideo+bestaudio/best"

	ffmpegArgs = "ffmpeg:-c:v libx264 -profile:v baseline -level 3.0 -preset ultrafast " +
		"-crf 23 -c:a aac -b:a 128k -movflags +faststart -threads 6"
)

// Recorder persists the record of a finished download.
type Recorder interface {
	Record(ctx context.Context, rec *models.FileRecord) error
}

// Scanner inspects a downloaded file for malware.
type Scanner interface {
	Scan(ctx context.Context, path string) (infected bool, signature string, err error)
}

type Config struct {
	MaxFileSize int64
}

type Request struct {
	URL    string
	Format string
	User   *models.Identity
}

type Result struct {
	RequestID    string
	UserID       string
	VideoID      string
	Title        string
	FilePath     string
	Duration     *float64
	DownloadPath string
	FileSize     int64
	// Recorded is false when the file is on disk but its record could not
	// be written.
	Recorded bool
}

type FormatList struct {
	Formats   []Format
	RawOutput string
}

// Service runs one download per call: metadata, size policy, download,
// optional scan, then the record. Calls share nothing but the root.
type Service struct {
	runner   Runner
	root     *storage.Local
	recorder Recorder
	scanner  Scanner
	cfg      Config
	logger   *slog.Logger
}

type Option func(*Service)

func WithScanner(s Scanner) Option {
	return func(svc *Service) { svc.scanner = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = logger.Component(l, "downloader") }
}

func NewService(runner Runner, root *storage.Local, recorder Recorder, cfg Config, opts ...Option) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	s := &Service{
		runner:   runner,
		root:     root,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger.Component(nil, "downloader"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) FetchInfo(ctx context.Context, url string) (*VideoInfo, error) {
	stdout, stderr, err := s.runner.Run(ctx, "--dump-json", "--no-playlist", url)
	if err != nil {
		s.logger.Error("error getting video info", "url", url, "error", err, "stderr", stderr)
		return nil, models.Upstream(err, "Failed to get video info: %s", toolMessage(stderr, err))
	}
	info, err := parseVideoInfo(stdout)
	if err != nil {
		s.logger.Error("failed to parse video info", "url", url, "error", err)
		return nil, &models.AppError{Kind: models.KindUpstream, Message: "Invalid video metadata", Err: err}
	}
	return info, nil
}

func (s *Service) Download(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, err
	}
	format := req.Format
	if format == "" {
		format = DefaultFormat
	}
	requestID := uuid.NewString()
	log := s.logger.With("request_id", requestID, "user", req.User.Username, "user_id", req.User.ID)
	log.Info("download request", "url", req.URL, "format", format)

	info, err := s.FetchInfo(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if err := CheckFileSize(info.SizeHint(), s.cfg.MaxFileSize); err != nil {
		log.Warn("file size validation failed", "error", err)
		return nil, err
	}

	stem := uuid.NewString()
	template := s.root.Path(stem) + ".%(ext)s"
	_, stderr, err := s.runner.Run(ctx,
		"-f", format,
		"-o", template,
		"--no-playlist",
		"--merge-output-format", "mp4",
		"--postprocessor-args", ffmpegArgs,
		req.URL,
	)
	if err != nil {
		log.Error("download failed", "error", err, "stderr", stderr)
		return nil, models.Upstream(err, "Download failed: %s", toolMessage(stderr, err))
	}

	path, stat, err := s.root.Find(stem)
	if err != nil {
		log.Error("download produced no file", "stem", stem, "error", err)
		return nil, models.Upstream(err, "Download failed: output file not found")
	}
	stored := filepath.Base(path)
	ext := filepath.Ext(path)

	if s.scanner != nil {
		infected, signature, err := s.scanner.Scan(ctx, path)
		switch {
		case err != nil:
			log.Warn("malware scan failed, keeping file", "file", stored, "error", err)
		case infected:
			log.Warn("malware detected, removing file", "file", stored, "signature", signature)
			if rmErr := s.root.Remove(path); rmErr != nil {
				log.Error("failed to remove infected file", "file", stored, "error", rmErr)
			}
			return nil, models.Validation("Downloaded file was rejected by the malware scanner")
		}
	}

	rec := &models.FileRecord{
		ID:               uuid.New(),
		UserID:           req.User.ID,
		OriginalFilename: SafeFilename(info.Title, info.ID) + ext,
		StoredFilename:   stored,
		FilePath:         path,
		FileSize:         stat.Size(),
		MimeType:         contentType(ext),
		VideoTitle:       info.Title,
		VideoURL:         req.URL,
	}

	recorded := true
	if err := s.recorder.Record(ctx, rec); err != nil {
		// The file stays on disk untracked; the caller still gets success.
		log.Error("error saving file record", "file", stored, "error", err)
		recorded = false
	} else {
		log.Info("saved file record", "file_id", rec.ID)
	}

	log.Info("video downloaded", "file", stored, "size", rec.FileSize)
	return &Result{
		RequestID:    requestID,
		UserID:       req.User.ID.String(),
		VideoID:      info.ID,
		Title:        info.Title,
		FilePath:     stored,
		Duration:     info.Duration,
		DownloadPath: "/files/" + stored,
		FileSize:     rec.FileSize,
		Recorded:     recorded,
	}, nil
}

func (s *Service) ListFormats(ctx context.Context, url string) (*FormatList, error) {
	if err := ValidateURL(url); err != nil {
		return nil, err
	}
	stdout, stderr, err := s.runner.Run(ctx, "-F", "--no-playlist", url)
	if err != nil {
		s.logger.Error("error fetching formats", "url", url, "error", err, "stderr", stderr)
		return nil, models.Upstream(err, "%s", toolMessage(stderr, err))
	}
	return &FormatList{Formats: parseFormats(stdout), RawOutput: stdout}, nil
}

func toolMessage(stderr string, err error) string {
	if errors.Is(err, ErrTimeout) {
		return "Command timed out"
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	return err.Error()
}
