package clip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/cliplearn/backend/internal/domain"
	"github.com/cliplearn/backend/internal/pkg/id"
)

// Batch size when the quiz is suppressed.
const defaultBatchSize = 5

// Options per quiz item. A batch below this size cannot host a quiz.
const quizOptionCount = 4

const defaultMaxUploadBytes = 50 << 20 // 50MB

// UserResolver lazily resolves the caller's identity. RandomBatch invokes
// it only when the quiz is enabled; with the quiz off, a caller carrying a
// bad credential still gets a plain batch.
type UserResolver func(ctx context.Context) (*domain.User, error)

type UploadInput struct {
	Reader               io.Reader
	ContentType          string
	Size                 int64
	DescriptionPrimary   string
	DescriptionSecondary string
	UploaderID           int
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Clip, error)
	List(ctx context.Context) ([]domain.Clip, error)
	Get(ctx context.Context, clipID int) (*domain.Clip, error)
	Update(ctx context.Context, clipID int, req domain.UpdateClipRequest) (*domain.Clip, error)
	Delete(ctx context.Context, clipID int) error
	// Media streams a clip's stored video or thumbnail.
	Media(ctx context.Context, clipID int, kind string) (io.ReadCloser, string, error)
	// RandomBatch draws a fresh uniform batch excluding the given ids and,
	// when the caller is quiz-eligible, appends one synthetic quiz item.
	// resolve is nil for anonymous callers and is only invoked when the
	// quiz is enabled.
	RandomBatch(ctx context.Context, exclude []int, resolve UserResolver) ([]domain.BatchItem, error)
}

type clipStore interface {
	Put(ctx context.Context, c *domain.Clip) error
	Get(ctx context.Context, clipID int) (*domain.Clip, error)
	List(ctx context.Context) ([]domain.Clip, error)
	Sample(ctx context.Context, exclude []int, n int) ([]domain.Clip, error)
	Update(ctx context.Context, clipID int, updates map[string]interface{}) error
	Delete(ctx context.Context, clipID int) (*domain.Clip, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type thumbnailer interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

type settingsFetcher interface {
	Fetch(ctx context.Context) (domain.Settings, error)
}

type eligibilityPolicy interface {
	IsEligible(ctx context.Context, user *domain.User, settings domain.Settings) (bool, error)
}

type idAllocator interface {
	Next(ctx context.Context, name string) (int, error)
}

type service struct {
	repo      clipStore
	media     objectStore
	thumbs    thumbnailer
	settings  settingsFetcher
	policy    eligibilityPolicy
	ids       idAllocator
	idCounter string
	maxBytes  int64
}

type ServiceDeps struct {
	ClipRepo    clipStore
	MediaStore  objectStore
	Thumbnailer thumbnailer
	Settings    settingsFetcher
	QuizPolicy  eligibilityPolicy
	IDs         idAllocator
	IDCounter   string
	// MaxUploadBytes caps accepted video uploads; zero means the 50MB default.
	MaxUploadBytes int64
}

func NewService(deps ServiceDeps) Service {
	maxBytes := deps.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &service{
		repo:      deps.ClipRepo,
		media:     deps.MediaStore,
		thumbs:    deps.Thumbnailer,
		settings:  deps.Settings,
		policy:    deps.QuizPolicy,
		ids:       deps.IDs,
		idCounter: deps.IDCounter,
		maxBytes:  maxBytes,
	}
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.Clip, error) {
	if input.ContentType != "video/mp4" {
		return nil, fmt.Errorf("invalid file type, only MP4 files are accepted: %w", domain.ErrBadRequest)
	}
	if input.Size > s.maxBytes {
		return nil, fmt.Errorf("file exceeds the %dMB limit: %w", s.maxBytes>>20, domain.ErrBadRequest)
	}

	// Spool the upload to disk: it is read twice (thumbnail pass + S3 put).
	tmp, err := os.CreateTemp("", "clip-upload-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()
	if _, err := io.Copy(tmp, io.LimitReader(input.Reader, s.maxBytes+1)); err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}

	thumbPath, err := s.thumbs.Extract(ctx, tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("extract thumbnail: %w", err)
	}
	defer os.Remove(thumbPath)

	name := id.New()
	videoKey := fmt.Sprintf("clips/%s.mp4", name)
	thumbKey := fmt.Sprintf("clips/thumbnails/%s.jpg", name)

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := s.media.Upload(ctx, videoKey, tmp, "video/mp4"); err != nil {
		return nil, err
	}
	thumb, err := os.Open(thumbPath)
	if err != nil {
		return nil, err
	}
	defer thumb.Close()
	if _, err := s.media.Upload(ctx, thumbKey, thumb, "image/jpeg"); err != nil {
		return nil, err
	}

	clipID, err := s.ids.Next(ctx, s.idCounter)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Clip{
		ClipID:               clipID,
		DescriptionPrimary:   input.DescriptionPrimary,
		DescriptionSecondary: input.DescriptionSecondary,
		VideoURL:             videoKey,
		ThumbnailURL:         thumbKey,
		AddedBy:              input.UploaderID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) List(ctx context.Context) ([]domain.Clip, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, clipID int) (*domain.Clip, error) {
	return s.repo.Get(ctx, clipID)
}

func (s *service) Update(ctx context.Context, clipID int, req domain.UpdateClipRequest) (*domain.Clip, error) {
	updates := map[string]interface{}{}
	if req.DescriptionPrimary != nil {
		updates["description_primary"] = *req.DescriptionPrimary
	}
	if req.DescriptionSecondary != nil {
		updates["description_secondary"] = *req.DescriptionSecondary
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, clipID)
	}
	if err := s.repo.Update(ctx, clipID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, clipID)
}

func (s *service) Delete(ctx context.Context, clipID int) error {
	deleted, err := s.repo.Delete(ctx, clipID)
	if err != nil {
		return err
	}
	// Media cleanup is best-effort: a dangling object is preferable to a
	// clip record that outlives a failed delete.
	for _, key := range []string{deleted.VideoURL, deleted.ThumbnailURL} {
		if key == "" {
			continue
		}
		if err := s.media.Delete(ctx, key); err != nil {
			slog.Warn("could not delete clip media", "key", key, "err", err)
		}
	}
	return nil
}

// Media looks up the clip and streams the requested stored object. kind is
// "video" or "thumbnail".
func (s *service) Media(ctx context.Context, clipID int, kind string) (io.ReadCloser, string, error) {
	c, err := s.repo.Get(ctx, clipID)
	if err != nil {
		return nil, "", err
	}
	var key, contentType string
	switch kind {
	case "video":
		key, contentType = c.VideoURL, "video/mp4"
	case "thumbnail":
		key, contentType = c.ThumbnailURL, "image/jpeg"
	default:
		return nil, "", fmt.Errorf("unknown media kind %q: %w", kind, domain.ErrBadRequest)
	}
	body, err := s.media.Download(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

func (s *service) RandomBatch(ctx context.Context, exclude []int, resolve UserResolver) ([]domain.BatchItem, error) {
	settings, err := s.settings.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	// Identity is resolved only when a quiz could actually be served. With
	// the quiz disabled, a caller presenting a bad credential still gets a
	// plain batch.
	var user *domain.User
	if settings.QuizEnabled && resolve != nil {
		user, err = resolve(ctx)
		if err != nil {
			return nil, err
		}
	}
	eligible, err := s.policy.IsEligible(ctx, user, settings)
	if err != nil {
		return nil, err
	}

	n := defaultBatchSize
	if eligible {
		n = settings.ClipsBeforeQuiz
	}
	clips, err := s.repo.Sample(ctx, exclude, n)
	if err != nil {
		return nil, err
	}
	if len(clips) < n {
		return nil, fmt.Errorf("%d clips requested, %d available after exclusions: %w",
			n, len(clips), domain.ErrDataShortage)
	}

	items := make([]domain.BatchItem, 0, n+1)
	for _, c := range clips {
		items = append(items, domain.BatchItem{Clip: c})
	}
	if !eligible {
		return items, nil
	}
	if n < quizOptionCount {
		return nil, fmt.Errorf("batch of %d cannot host a quiz (need %d): %w",
			n, quizOptionCount, domain.ErrDataShortage)
	}

	// The learner must identify the clip at guess; the other options come
	// from its neighbors in the batch, wrapping around.
	guess := rand.IntN(n)
	options := make([]domain.QuizOption, 0, quizOptionCount)
	for i := 0; i < quizOptionCount; i++ {
		idx := (guess + i) % n
		options = append(options, domain.QuizOption{
			DescriptionPrimary: clips[idx].DescriptionPrimary,
			Correct:            idx == guess,
		})
	}
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	items = append(items, domain.BatchItem{
		Clip:    clips[guess],
		Quiz:    true,
		Options: options,
	})
	return items, nil
}
