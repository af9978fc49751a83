package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/khanghh/clubhub/model"
	"github.com/spf13/cast"
)

type Kind string

const (
	KindCommunicationLink Kind = "communicationLink"
	KindMediaConfig       Kind = "mediaConfig"
	KindSponsorshipPage   Kind = "sponsorshipPage"
	KindSponsor           Kind = "sponsor"
)

var Kinds = []Kind{KindCommunicationLink, KindMediaConfig, KindSponsorshipPage, KindSponsor}

type fieldType int

const (
	fieldString fieldType = iota
	fieldBool
	fieldID
)

type field struct {
	column string
	typ    fieldType
}

type kindSpec struct {
	fields   map[string]field
	required []string
	create   []string
	update   []string
	newModel func() interface{}
	build    func(values map[string]interface{}) interface{}
}

var kindSpecs = map[Kind]*kindSpec{
	KindCommunicationLink: {
		fields: map[string]field{
			"platform": {"platform", fieldString},
			"url":      {"url", fieldString},
			"imgUrl":   {"img_url", fieldString},
			"isActive": {"is_active", fieldBool},
		},
		required: []string{"platform", "url", "imgUrl"},
		create:   []string{"platform", "url", "imgUrl", "isActive"},
		update:   []string{"platform", "url", "isActive"},
		newModel: func() interface{} { return &model.CommunicationLink{} },
		build: func(v map[string]interface{}) interface{} {
			link := &model.CommunicationLink{
				Platform: v["platform"].(string),
				URL:      v["url"].(string),
				ImgURL:   v["imgUrl"].(string),
				IsActive: true,
			}
			if active, ok := v["isActive"].(bool); ok {
				link.IsActive = active
			}
			return link
		},
	},
	KindMediaConfig: {
		fields: map[string]field{
			"mediaDriveUrl": {"media_drive_url", fieldString},
		},
		required: []string{"mediaDriveUrl"},
		create:   []string{"mediaDriveUrl"},
		update:   []string{"mediaDriveUrl"},
		newModel: func() interface{} { return &model.MediaConfig{} },
		build: func(v map[string]interface{}) interface{} {
			return &model.MediaConfig{MediaDriveURL: v["mediaDriveUrl"].(string)}
		},
	},
	KindSponsorshipPage: {
		fields: map[string]field{
			"pageContent": {"page_content", fieldString},
		},
		required: []string{"pageContent"},
		create:   []string{"pageContent"},
		update:   []string{"pageContent"},
		newModel: func() interface{} { return &model.SponsorshipPage{} },
		build: func(v map[string]interface{}) interface{} {
			return &model.SponsorshipPage{PageContent: v["pageContent"].(string), Sponsors: []model.Sponsor{}}
		},
	},
	KindSponsor: {
		fields: map[string]field{
			"name":              {"name", fieldString},
			"logoUrl":           {"logo_url", fieldString},
			"websiteUrl":        {"website_url", fieldString},
			"sponsorshipPageId": {"sponsorship_page_id", fieldID},
		},
		required: []string{"name", "sponsorshipPageId"},
		create:   []string{"name", "logoUrl", "websiteUrl", "sponsorshipPageId"},
		update:   []string{"name", "logoUrl", "websiteUrl", "sponsorshipPageId"},
		newModel: func() interface{} { return &model.Sponsor{} },
		build: func(v map[string]interface{}) interface{} {
			sponsor := &model.Sponsor{
				Name:              v["name"].(string),
				SponsorshipPageID: v["sponsorshipPageId"].(uint),
			}
			if logo, ok := v["logoUrl"].(string); ok {
				sponsor.LogoURL = logo
			}
			if site, ok := v["websiteUrl"].(string); ok {
				sponsor.WebsiteURL = site
			}
			return sponsor
		},
	},
}

func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if _, ok := kindSpecs[kind]; !ok {
		names := make([]string, len(Kinds))
		for i, k := range Kinds {
			names[i] = string(k)
		}
		return "", fmt.Errorf("%w %q, must be one of: %s", ErrUnknownKind, s, strings.Join(names, ", "))
	}
	return kind, nil
}

func isBlank(val interface{}) bool {
	if val == nil {
		return true
	}
	s, ok := val.(string)
	return ok && s == ""
}

func (k *kindSpec) missing(data map[string]interface{}) []string {
	var missing []string
	for _, name := range k.required {
		if isBlank(data[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

// filter keeps only whitelisted keys of data and coerces each to its field type.
func (k *kindSpec) filter(data map[string]interface{}, allowed []string) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	var invalid []string
	for _, name := range allowed {
		raw, ok := data[name]
		if !ok {
			continue
		}
		val, err := coerce(k.fields[name].typ, raw)
		if err != nil {
			invalid = append(invalid, name)
			continue
		}
		values[name] = val
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, &FieldsError{Reason: "invalid field values", Fields: invalid}
	}
	return values, nil
}

func (k *kindSpec) columns(values map[string]interface{}) map[string]interface{} {
	cols := make(map[string]interface{}, len(values))
	for name, val := range values {
		cols[k.fields[name].column] = val
	}
	return cols
}

func coerce(typ fieldType, raw interface{}) (interface{}, error) {
	switch typ {
	case fieldBool:
		if raw == nil {
			return nil, fmt.Errorf("null value")
		}
		return cast.ToBoolE(raw)
	case fieldID:
		id, err := ParseID(raw)
		if err != nil {
			if s, ok := raw.(string); ok {
				return ParseID(cast.ToUint(strings.TrimSpace(s)))
			}
		}
		return id, err
	default:
		if raw == nil {
			return nil, fmt.Errorf("null value")
		}
		return cast.ToStringE(raw)
	}
}

// ParseID accepts a positive integral number.
func ParseID(raw interface{}) (uint, error) {
	switch v := raw.(type) {
	case float64:
		if v < 1 || v != float64(uint(v)) {
			return 0, ErrInvalidID
		}
		return uint(v), nil
	case int, int64, uint, uint64:
		id, err := cast.ToUintE(v)
		if err != nil || id == 0 {
			return 0, ErrInvalidID
		}
		return id, nil
	}
	return 0, ErrInvalidID
}
