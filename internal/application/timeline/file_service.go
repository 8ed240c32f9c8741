package timeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LargeFileThreshold is the size above which uploads bypass the board and go
// to the object store, with a link attached to the card instead.
const LargeFileThreshold = 10 << 20 // 10 MiB

// URLProber checks whether a stored link still resolves.
type URLProber interface {
	Reachable(ctx context.Context, url string) bool
}

// FileUpload is one incoming file to associate with a milestone.
type FileUpload struct {
	Name     string
	MimeType string
	Data     []byte
}

// FileService routes milestone file uploads. Small files are uploaded
// directly to the board; large ones go to the object store and a link is
// attached to the card. Names already present on the milestone are skipped,
// and names already attached to the card reuse the board attachment instead
// of uploading a duplicate.
type FileService struct {
	source     card.Source
	store      timeline.ObjectStore
	milestones timeline.MilestoneRepository
	prober     URLProber
	threshold  int64
	logger     *zap.Logger
}

// NewFileService creates a file service. prober may be nil, in which case
// VerifyLinks leaves URLs untouched.
func NewFileService(source card.Source, store timeline.ObjectStore, milestones timeline.MilestoneRepository, prober URLProber, logger *zap.Logger) *FileService {
	return &FileService{
		source:     source,
		store:      store,
		milestones: milestones,
		prober:     prober,
		threshold:  LargeFileThreshold,
		logger:     logger,
	}
}

// AddFiles associates a batch of uploads with a milestone. The whole batch
// produces a single history entry on the milestone.
func (s *FileService) AddFiles(ctx context.Context, projectID, milestoneID string, uploads []FileUpload) (*timeline.Milestone, error) {
	if projectID == card.TrainingCardID {
		return nil, card.ErrTrainingCard
	}
	m, err := s.milestones.Get(ctx, projectID, milestoneID)
	if err != nil {
		return nil, err
	}

	existing, err := s.source.Attachments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]card.Attachment, len(existing))
	for _, att := range existing {
		byName[att.FileName] = att
	}

	var files []timeline.AssociatedFile
	for _, up := range uploads {
		if m.HasFileNamed(up.Name) {
			s.logger.Debug("File already on milestone, skipping",
				zap.String("milestone_id", milestoneID), zap.String("name", up.Name))
			continue
		}
		f, err := s.routeUpload(ctx, projectID, byName, up)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}

	if err := m.AttachFiles(files); err != nil {
		if errors.Is(err, timeline.ErrNoChange) {
			return m, nil
		}
		return nil, err
	}
	if err := s.milestones.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// routeUpload decides where one file goes and returns the resulting
// association.
func (s *FileService) routeUpload(ctx context.Context, projectID string, byName map[string]card.Attachment, up FileUpload) (*timeline.AssociatedFile, error) {
	if att, ok := byName[up.Name]; ok {
		// Same name already attached to the card: reuse it rather than
		// uploading a duplicate.
		return &timeline.AssociatedFile{
			ID:                 att.ID,
			Name:               att.FileName,
			Kind:               timeline.FileKindFromMime(att.MimeType),
			Size:               timeline.HumanizeBytes(att.Bytes),
			Bytes:              att.Bytes,
			URL:                att.URL,
			SourceAttachmentID: att.ID,
		}, nil
	}

	size := int64(len(up.Data))
	if size < s.threshold {
		att, err := s.source.UploadAttachment(ctx, projectID, up.Name, up.MimeType, up.Data)
		if err != nil {
			return nil, err
		}
		return &timeline.AssociatedFile{
			ID:                 att.ID,
			Name:               up.Name,
			Kind:               timeline.FileKindFromMime(up.MimeType),
			Size:               timeline.HumanizeBytes(size),
			Bytes:              size,
			URL:                att.URL,
			SourceAttachmentID: att.ID,
		}, nil
	}

	key := fmt.Sprintf("%s/%s-%s", projectID, uuid.NewString(), up.Name)
	url, err := s.store.Upload(ctx, key, up.MimeType, up.Data)
	if err != nil {
		return nil, err
	}
	// Link the stored object back to the card so the board shows it too.
	if _, err := s.source.AttachURL(ctx, projectID, up.Name, url); err != nil {
		return nil, err
	}
	s.logger.Info("Large file routed to object store",
		zap.String("project_id", projectID),
		zap.String("name", up.Name),
		zap.Int64("bytes", size))
	return &timeline.AssociatedFile{
		ID:              uuid.NewString(),
		Name:            up.Name,
		Kind:            timeline.FileKindFromMime(up.MimeType),
		Size:            timeline.HumanizeBytes(size),
		Bytes:           size,
		URL:             url,
		SourceObjectKey: key,
	}, nil
}

// RemoveFile detaches a file from a milestone.
func (s *FileService) RemoveFile(ctx context.Context, projectID, milestoneID, fileID string) (*timeline.Milestone, error) {
	if projectID == card.TrainingCardID {
		return nil, card.ErrTrainingCard
	}
	m, err := s.milestones.Get(ctx, projectID, milestoneID)
	if err != nil {
		return nil, err
	}
	if err := m.RemoveFile(fileID); err != nil {
		return nil, err
	}
	if err := s.milestones.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// VerifyLinks probes the milestone's file URLs and clears the ones that no
// longer resolve. Dead links are not an error: the file row stays, the URL
// goes away.
func (s *FileService) VerifyLinks(ctx context.Context, projectID, milestoneID string) (*timeline.Milestone, error) {
	m, err := s.milestones.Get(ctx, projectID, milestoneID)
	if err != nil {
		return nil, err
	}
	if s.prober == nil {
		return m, nil
	}

	cleared := 0
	for i := range m.Files {
		if m.Files[i].URL == "" {
			continue
		}
		if !s.prober.Reachable(ctx, m.Files[i].URL) {
			m.Files[i].URL = ""
			cleared++
		}
	}
	if cleared == 0 {
		return m, nil
	}
	s.logger.Warn("Cleared dead file links",
		zap.String("milestone_id", milestoneID), zap.Int("cleared", cleared))
	if err := s.milestones.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
