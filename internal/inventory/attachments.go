package inventory

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// blobPrefix marks attachment paths whose content lives in the blob store.
const blobPrefix = "attachments/"

func blobKey(assetID, id, name string) string {
	return blobPrefix + path.Join(assetID, id, path.Base("/"+name))
}

// ownsBlob reports whether a's content was stored by Upload for this very
// attachment.
func ownsBlob(a models.Attachment) bool {
	return strings.HasPrefix(a.Path, blobPrefix+path.Join(a.AssetID, a.ID)+"/")
}

// AttachmentService manages attachment metadata and, when a BlobStore is
// configured, their content.
type AttachmentService struct {
	base
	attachments store.Collection[models.Attachment]
}

// NewAttachmentService returns an attachment service over attachments.
func NewAttachmentService(attachments store.Collection[models.Attachment], opts ...Option) *AttachmentService {
	return &AttachmentService{base: newBase(opts), attachments: attachments}
}

func attachmentNotFound(id string) func() error {
	return func() error { return apperr.NotFound(apperr.ResourceAttachment, id) }
}

// CanUpload reports whether a BlobStore is configured.
func (s *AttachmentService) CanUpload() bool {
	return s.blobs != nil
}

// CreateAttachment stores attachment metadata whose content lives elsewhere.
func (s *AttachmentService) CreateAttachment(ctx context.Context, in models.AttachmentInput) (models.Attachment, error) {
	if err := in.Validate(); err != nil {
		return models.Attachment{}, err
	}
	if strings.TrimSpace(in.Path) == "" {
		return models.Attachment{}, apperr.Configuration("Missing required field 'path' in attachment")
	}
	if strings.HasPrefix(path.Clean(strings.TrimLeft(in.Path, "/")), blobPrefix) {
		return models.Attachment{}, apperr.Configuration("path %q is reserved for uploaded content", in.Path)
	}
	return s.create(ctx, ident.NewID(ident.PrefixAttachment), in)
}

// Upload streams r to the blob store and stores the attachment with the
// resulting path and size.
func (s *AttachmentService) Upload(ctx context.Context, in models.AttachmentInput, r io.Reader) (models.Attachment, error) {
	if s.blobs == nil {
		return models.Attachment{}, apperr.InvalidOperation("attachment uploads are not enabled")
	}
	if err := in.Validate(); err != nil {
		return models.Attachment{}, err
	}

	id := ident.NewID(ident.PrefixAttachment)
	key := blobKey(in.AssetID, id, in.Name)
	n, err := s.blobs.Put(ctx, key, r)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("storing attachment content: %w", err)
	}
	in.Path = key
	in.Size = n
	return s.create(ctx, id, in)
}

func (s *AttachmentService) create(ctx context.Context, id string, in models.AttachmentInput) (a models.Attachment, err error) {
	defer s.observe("attachment", "create", &err)

	now := s.now().UTC()
	a = models.Attachment{
		ID:          id,
		AssetID:     in.AssetID,
		Name:        in.Name,
		Type:        in.Type,
		Size:        in.Size,
		Path:        in.Path,
		UploadedBy:  in.UploadedBy,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.attachments.Put(ctx, a); err != nil {
		return models.Attachment{}, fmt.Errorf("storing attachment: %w", err)
	}
	s.logger.Info("attachment created", "attachment_id", a.ID, "asset_id", a.AssetID, "size", a.Size)
	return a, nil
}

// GetAttachmentByID returns the attachment or a NotFound error.
func (s *AttachmentService) GetAttachmentByID(ctx context.Context, id string) (models.Attachment, error) {
	a, err := s.attachments.Get(ctx, id)
	if err != nil {
		return models.Attachment{}, translate(err, attachmentNotFound(id), "loading attachment")
	}
	return a, nil
}

// GetAllAttachments returns every attachment in insertion order.
func (s *AttachmentService) GetAllAttachments(ctx context.Context) ([]models.Attachment, error) {
	all, err := s.attachments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	return all, nil
}

// GetAttachmentsForAsset returns the attachments of one asset.
func (s *AttachmentService) GetAttachmentsForAsset(ctx context.Context, assetID string) ([]models.Attachment, error) {
	all, err := s.GetAllAttachments(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Attachment{}
	for _, a := range all {
		if a.AssetID == assetID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Open returns the attachment and a reader over its content. The caller
// closes the reader.
func (s *AttachmentService) Open(ctx context.Context, id string) (models.Attachment, io.ReadCloser, error) {
	a, err := s.GetAttachmentByID(ctx, id)
	if err != nil {
		return models.Attachment{}, nil, err
	}
	if s.blobs == nil || !ownsBlob(a) {
		return models.Attachment{}, nil, apperr.InvalidOperation("attachment %s has no stored content", id)
	}
	rc, err := s.blobs.Open(ctx, a.Path)
	if err != nil {
		return models.Attachment{}, nil, fmt.Errorf("opening attachment content: %w", err)
	}
	return a, rc, nil
}

// DeleteAttachment removes the attachment. Stored content is removed on a
// best-effort basis.
func (s *AttachmentService) DeleteAttachment(ctx context.Context, id string) (err error) {
	defer s.observe("attachment", "delete", &err)

	a, err := s.GetAttachmentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return translate(err, attachmentNotFound(id), "deleting attachment")
	}
	if s.blobs != nil && ownsBlob(a) {
		if err := s.blobs.Delete(ctx, a.Path); err != nil {
			s.logger.Warn("failed to delete attachment content", "attachment_id", id, "path", a.Path, "error", err)
		}
	}
	s.logger.Info("attachment deleted", "attachment_id", id)
	return nil
}
