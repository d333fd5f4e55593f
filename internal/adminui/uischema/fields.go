package uischema

import (
	"context"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/adminui/uploader"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jakubkanna/labguy-manager/internal/medialist"
)

const (
	WidgetAutocomplete = "autocomplete"
	WidgetMedia        = "media"
)

// TagsField is a free text autocomplete over the existing tags.
func TagsField(fetch func(ctx context.Context) ([]entity.Tag, error)) Renderer {
	return RendererFunc(func(ctx context.Context, props FieldProps) (Control, error) {
		tags, err := fetch(ctx)
		if err != nil {
			return Control{}, err
		}
		value, err := decode[[]entity.Tag](props.FormData)
		if err != nil {
			return Control{}, err
		}
		opts := make([]Option, 0, len(tags))
		for _, t := range tags {
			opts = append(opts, Option{ID: t.ID, Title: t.Title})
		}
		return Control{
			Widget:   WidgetAutocomplete,
			FreeSolo: true,
			Multiple: true,
			Value:    value,
			Options:  opts,
			Select: func(selected []Selection) error {
				out := make([]entity.Tag, 0, len(selected))
				for _, s := range selected {
					if s.Option != nil {
						out = append(out, entity.Tag{ID: s.Option.ID, Title: s.Option.Title})
						continue
					}
					out = append(out, entity.Tag{Title: s.Text})
				}
				props.OnChange(out)
				return nil
			},
		}, nil
	})
}

// ProjectRef is a related project as the work form sends it.
type ProjectRef struct {
	ID      int        `json:"id,omitempty"`
	General GeneralRef `json:"general"`
}

// GeneralRef carries the general section of a related project. ID holds the typed
// string for free text or, for a picked option, the project id as a number.
type GeneralRef struct {
	ID    any    `json:"id"`
	Title string `json:"title"`
}

// ProjectOptions maps projects to {id, title} options.
func ProjectOptions(projects []entity.Project) []Option {
	out := make([]Option, 0, len(projects))
	for _, p := range projects {
		out = append(out, Option{ID: p.ID, Title: p.General.Title})
	}
	return out
}

// ProjectRefs maps a selection back to the form value. Free text s becomes
// {general:{id:s, title:s}} and an option becomes {id, general:{id, title}}, where
// general.id repeats the project id rather than the id of the project's general
// section.
// TODO: send the general section id once the options carry it; the API ignores
// general.id of related projects today.
func ProjectRefs(selected []Selection) []ProjectRef {
	out := make([]ProjectRef, 0, len(selected))
	for _, s := range selected {
		if s.Option == nil {
			out = append(out, ProjectRef{General: GeneralRef{ID: s.Text, Title: s.Text}})
			continue
		}
		out = append(out, ProjectRef{
			ID:      s.Option.ID,
			General: GeneralRef{ID: s.Option.ID, Title: s.Option.Title},
		})
	}
	return out
}

// ProjectsField is a free text multi select over the existing projects.
func ProjectsField(fetch func(ctx context.Context) ([]entity.Project, error)) Renderer {
	return RendererFunc(func(ctx context.Context, props FieldProps) (Control, error) {
		projects, err := fetch(ctx)
		if err != nil {
			return Control{}, err
		}
		value, err := decode[[]entity.Project](props.FormData)
		if err != nil {
			return Control{}, err
		}
		return Control{
			Widget:   WidgetAutocomplete,
			Label:    "Projects",
			FreeSolo: true,
			Multiple: true,
			Value:    ProjectOptions(value),
			Options:  ProjectOptions(projects),
			Select: func(selected []Selection) error {
				props.OnChange(ProjectRefs(selected))
				return nil
			},
		}, nil
	})
}

// CoordinatorFactory builds the upload coordinator feeding list.
type CoordinatorFactory func(variant uploader.Variant, list *medialist.List) *uploader.Coordinator

// MediaField shows the media of a field read only. Media are replaced by uploading:
// the uploaded batch is merged into the current value and sent to the form.
func MediaField(variant entity.MediaKind, label string, coordinator CoordinatorFactory) Renderer {
	return RendererFunc(func(ctx context.Context, props FieldProps) (Control, error) {
		value, err := decode[[]entity.Media](props.FormData)
		if err != nil {
			return Control{}, err
		}
		if value == nil {
			value = []entity.Media{}
		}
		return Control{
			Widget:  WidgetMedia,
			Label:   label,
			NoEdit:  true,
			Variant: string(variant),
			Value:   value,
			Upload: func(ctx context.Context, kind entity.MediaKind, files []dto.UploadFile) error {
				if coordinator == nil {
					return fmt.Errorf("%w: no uploader", uploader.ErrUnavailable)
				}
				list := medialist.NewList(value)
				items, err := coordinator(variant, list).Upload(ctx, kind, files)
				if err != nil {
					return err
				}
				props.OnChange(items)
				return nil
			},
		}, nil
	})
}

// Deps are the collaborators of the custom fields.
type Deps struct {
	FetchTags     func(ctx context.Context) ([]entity.Tag, error)
	FetchProjects func(ctx context.Context) ([]entity.Project, error)
	Coordinator   CoordinatorFactory
}

// WorkUISchema customizes tags, related projects, images and videos of a work.
func WorkUISchema(d Deps) (*Registry, error) {
	return NewRegistry(SchemaOf(entity.Work{}), map[string]Renderer{
		"general.tags": TagsField(d.FetchTags),
		"projects":     ProjectsField(d.FetchProjects),
		"images":       MediaField(entity.MediaImage, "Images", d.Coordinator),
		"videos":       MediaField(entity.MediaVideo, "Videos", d.Coordinator),
	})
}

func ProjectUISchema(d Deps) (*Registry, error) {
	return NewRegistry(SchemaOf(entity.Project{}), map[string]Renderer{
		"general.tags": TagsField(d.FetchTags),
		"images":       MediaField(entity.MediaImage, "Images", d.Coordinator),
		"videos":       MediaField(entity.MediaVideo, "Videos", d.Coordinator),
	})
}

func PostUISchema(d Deps) (*Registry, error) {
	return NewRegistry(SchemaOf(entity.Post{}), map[string]Renderer{
		"general.tags": TagsField(d.FetchTags),
		"images":       MediaField(entity.MediaImage, "Images", d.Coordinator),
		"videos":       MediaField(entity.MediaVideo, "Videos", d.Coordinator),
	})
}

// ForKind returns the registry of a content kind.
func ForKind(kind entity.ContentKind, d Deps) (*Registry, error) {
	switch kind {
	case entity.KindWorks:
		return WorkUISchema(d)
	case entity.KindProjects:
		return ProjectUISchema(d)
	case entity.KindPosts:
		return PostUISchema(d)
	}
	return nil, fmt.Errorf("uischema: unknown kind %q", kind)
}
