package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Sternrassler/swecha-admin/pkg/client"
	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

// ErrInvalidMediaType is returned for a media type outside entity.MediaTypes.
var ErrInvalidMediaType = errors.New("invalid media type")

// GetCategory fetches one category directly from the backend.
func (d *Service) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	return d.session.Client().GetCategory(ctx, id)
}

// CreateCategory creates a category and drops the cached category list.
func (d *Service) CreateCategory(ctx context.Context, req entity.CategoryCreate) (client.Result, error) {
	return d.write(ctx, d.invalidateCategories, func() (client.Result, error) {
		return d.session.Client().CreateCategory(ctx, req)
	})
}

// UpdateCategory updates a category and drops the cached category list.
func (d *Service) UpdateCategory(ctx context.Context, id string, req entity.CategoryUpdate) (client.Result, error) {
	return d.write(ctx, d.invalidateCategories, func() (client.Result, error) {
		return d.session.Client().UpdateCategory(ctx, id, req)
	})
}

// DeleteCategory deletes a category and drops the cached category list.
func (d *Service) DeleteCategory(ctx context.Context, id string) (client.Result, error) {
	return d.write(ctx, d.invalidateCategories, func() (client.Result, error) {
		return d.session.Client().DeleteCategory(ctx, id)
	})
}

// GetRecord fetches one record directly from the backend.
func (d *Service) GetRecord(ctx context.Context, uid string) (*entity.Record, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	return d.session.Client().GetRecord(ctx, uid)
}

// UploadRecord uploads a media record. Records, activity and contribution
// caches are dropped since all of them count records.
func (d *Service) UploadRecord(ctx context.Context, up entity.RecordUpload) (client.Result, error) {
	if up.MediaType != "" && !slices.Contains(entity.MediaTypes, up.MediaType) {
		return client.Result{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, up.MediaType)
	}
	return d.write(ctx, d.invalidateRecords, func() (client.Result, error) {
		return d.session.Client().UploadRecord(ctx, up)
	})
}

// UpdateRecord updates a record and drops the record-derived caches.
func (d *Service) UpdateRecord(ctx context.Context, uid string, req entity.RecordUpdate) (client.Result, error) {
	return d.write(ctx, d.invalidateRecords, func() (client.Result, error) {
		return d.session.Client().UpdateRecord(ctx, uid, req)
	})
}

// DeleteRecord deletes a record and drops the record-derived caches.
func (d *Service) DeleteRecord(ctx context.Context, uid string) (client.Result, error) {
	return d.write(ctx, d.invalidateRecords, func() (client.Result, error) {
		return d.session.Client().DeleteRecord(ctx, uid)
	})
}

// UserContributions fetches a user's contribution summary from the backend.
func (d *Service) UserContributions(ctx context.Context, userID string) (*entity.ContributionSummary, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	return d.session.Client().UserContributions(ctx, userID)
}

// UserMediaContributions returns a user's contributions of one media type,
// served from the session cache.
func (d *Service) UserMediaContributions(ctx context.Context, userID, mediaType string) (*entity.MediaContributions, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	if !slices.Contains(entity.MediaTypes, mediaType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, mediaType)
	}

	items, err := d.session.MediaContributions(userID, mediaType).GetOrFetch(ctx)
	if err != nil {
		return nil, err
	}
	return &entity.MediaContributions{
		UserID:             userID,
		MediaType:          mediaType,
		TotalContributions: len(items),
		Contributions:      items,
	}, nil
}

// write runs a backend write for a logged-in operator and, when it succeeds,
// drops the caches it affects.
func (d *Service) write(ctx context.Context, invalidate func(context.Context), do func() (client.Result, error)) (client.Result, error) {
	if err := d.session.Require(); err != nil {
		return client.Result{}, err
	}
	res, err := do()
	if err != nil {
		return res, err
	}
	invalidate(ctx)
	return res, nil
}

func (d *Service) invalidateCategories(ctx context.Context) {
	d.invalidate(ctx, d.session.Categories.Invalidate)
}

func (d *Service) invalidateRecords(ctx context.Context) {
	d.invalidate(ctx,
		d.session.Records.Invalidate,
		d.session.Activity.Invalidate,
		d.session.InvalidateContributions)
}

func (d *Service) invalidate(ctx context.Context, fns ...func(context.Context) error) {
	for _, invalidate := range fns {
		if err := invalidate(ctx); err != nil {
			d.logger.Warn().Err(err).Msg("Cache invalidation after write failed")
		}
	}
}
