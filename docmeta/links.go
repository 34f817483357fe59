package docmeta

import (
	"net/url"
	"regexp"
	"strings"
)

type LinkInfo struct {
	Platform    string   `json:"platform,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
	Designer    string   `json:"designer,omitempty"`
	DesignerURL string   `json:"designer_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	License     string   `json:"license,omitempty"`
}

type platform struct {
	name     string
	host     string
	model    *regexp.Regexp
	designer *regexp.Regexp
}

var platforms = []platform{
	{
		name:     "makerworld",
		host:     "makerworld.com",
		model:    regexp.MustCompile(`^(/[a-z]{2})?/models/\d+`),
		designer: regexp.MustCompile(`^(?:/[a-z]{2})?/@([^/]+)`),
	},
	{
		name:     "printables",
		host:     "printables.com",
		model:    regexp.MustCompile(`^(/[a-z]{2})?/model/\d+`),
		designer: regexp.MustCompile(`^(?:/[a-z]{2})?/@([^/]+)`),
	},
	{
		name:     "thingiverse",
		host:     "thingiverse.com",
		model:    regexp.MustCompile(`^/thing:\d+`),
		designer: regexp.MustCompile(`^/([A-Za-z0-9_-]+)(?:/designs)?/?$`),
	},
	{
		name:     "cults3d",
		host:     "cults3d.com",
		model:    regexp.MustCompile(`^(/[a-z]{2})?/3d-model/`),
		designer: regexp.MustCompile(`^(?:/[a-z]{2})?/users/([^/]+)`),
	},
	{
		name:     "myminifactory",
		host:     "myminifactory.com",
		model:    regexp.MustCompile(`^/object/`),
		designer: regexp.MustCompile(`^/users/([^/]+)`),
	},
	{
		name:     "thangs",
		host:     "thangs.com",
		model:    regexp.MustCompile(`^(/designer/[^/]+)?/3d-model/`),
		designer: regexp.MustCompile(`^/designer/([^/]+)`),
	},
}

const creativeCommonsHost = "creativecommons.org"

var (
	tagPathPattern   = regexp.MustCompile(`/tags?/([^/?#]+)`)
	tagQueryKeys     = []string{"tag", "tags", "keyword"}
	ccLicensePattern = regexp.MustCompile(`/licenses/([a-z-]+)/(\d+(?:\.\d+)?)`)
	ccZeroPattern    = regexp.MustCompile(`/publicdomain/zero/(\d+(?:\.\d+)?)`)
)

func platformFor(host string) *platform {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")

	for i := range platforms {
		if host == platforms[i].host || strings.HasSuffix(host, "."+platforms[i].host) {
			return &platforms[i]
		}
	}

	return nil
}

// ClassifyLinks sorts the links found in a model's documents into source, designer, tags and license.
func ClassifyLinks(links []string) LinkInfo {
	var info LinkInfo
	seenTags := map[string]bool{}

	for _, link := range links {
		parsed, err := url.Parse(strings.TrimSpace(link))

		if err != nil || parsed.Host == "" {
			continue
		}

		if strings.HasSuffix(strings.ToLower(parsed.Host), creativeCommonsHost) {
			if info.License == "" {
				info.License = normalizeLicense(parsed.Path)
			}

			continue
		}

		p := platformFor(parsed.Host)

		if p == nil {
			continue
		}

		if tag := tagFrom(parsed); tag != "" {
			if key := strings.ToLower(tag); !seenTags[key] {
				seenTags[key] = true
				info.Tags = append(info.Tags, tag)
			}

			continue
		}

		switch {
		case p.model.MatchString(parsed.Path):
			if info.SourceURL == "" {
				info.SourceURL = withoutFragment(parsed)
				info.Platform = p.name
			}
		case p.designer.MatchString(parsed.Path):
			if info.DesignerURL == "" {
				info.DesignerURL = withoutFragment(parsed)
				name := p.designer.FindStringSubmatch(parsed.Path)[1]

				if unescaped, err := url.PathUnescape(name); err == nil {
					name = unescaped
				}

				info.Designer = name

				if info.Platform == "" {
					info.Platform = p.name
				}
			}
		}
	}

	return info
}

func tagFrom(parsed *url.URL) string {
	if match := tagPathPattern.FindStringSubmatch(parsed.Path); match != nil {
		if tag, err := url.PathUnescape(match[1]); err == nil {
			return strings.TrimSpace(tag)
		}
	}

	query := parsed.Query()

	for _, key := range tagQueryKeys {
		if value := strings.TrimSpace(query.Get(key)); value != "" {
			return value
		}
	}

	return ""
}

func withoutFragment(parsed *url.URL) string {
	clean := *parsed
	clean.Fragment = ""
	clean.RawFragment = ""
	return clean.String()
}

// normalizeLicense turns a Creative Commons license path into an SPDX style identifier,
// e.g. /licenses/by-nc/4.0/ becomes CC-BY-NC-4.0.
func normalizeLicense(path string) string {
	if match := ccLicensePattern.FindStringSubmatch(path); match != nil {
		return "CC-" + strings.ToUpper(match[1]) + "-" + match[2]
	}

	if match := ccZeroPattern.FindStringSubmatch(path); match != nil {
		return "CC0-" + match[1]
	}

	return ""
}
