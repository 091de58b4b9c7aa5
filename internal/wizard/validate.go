package wizard

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bytetide-io/bytetide-backend/internal/platform"
)

// FormData carries the customer-entered fields of a submission. Field names
// mirror the JSON the dashboard sends.
type FormData struct {
	Domain             string            `json:"domain"`
	PlatformID         string            `json:"platform"`
	ShopifyURL         string            `json:"shopify_url"`
	ShopifyAccessToken string            `json:"shopify_access_token"`
	Items              []string          `json:"items"`
	API                map[string]string `json:"api,omitempty"`
	SpecialDemands     string            `json:"special_demands,omitempty"`
}

// UploadedFile is a pending platform-required file with its type mapping
type UploadedFile struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	SelectedType string `json:"selected_type"`
}

// AdditionalFile is a pending custom upload; it has no fixed schema, so the
// customer describes it instead of mapping it to a type.
type AdditionalFile struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	CustomName  string `json:"custom_name"`
	Description string `json:"description"`
}

var (
	// label(.label)+ where each label is 1-63 alphanumeric/hyphen chars not
	// starting or ending with a hyphen, and the TLD is at least 2 alpha chars
	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

	shopifyURLPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

	// Shopify Admin API private-app token convention
	accessTokenPattern = regexp.MustCompile(`^shpat_[0-9a-fA-F]{32,}$`)
)

// ValidDomain reports whether s is a syntactically valid store domain
func ValidDomain(s string) bool {
	return domainPattern.MatchString(s)
}

// NormalizeShopifyURL strips the scheme and any path from a destination store
// URL and lowercases the host, so "https://Test.myshopify.com/admin" becomes
// "test.myshopify.com".
func NormalizeShopifyURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

// ValidShopifyURL reports whether the normalized form of raw is a
// *.myshopify.com store address
func ValidShopifyURL(raw string) bool {
	return shopifyURLPattern.MatchString(NormalizeShopifyURL(raw))
}

// ValidAccessToken reports whether s looks like a Shopify private-app
// Admin API token
func ValidAccessToken(s string) bool {
	return accessTokenPattern.MatchString(s)
}

// ValidateStep checks one step of the flow and returns field-keyed error
// messages, empty when the step is complete. Messages surface verbatim in the
// dashboard, so they are written for customers.
func ValidateStep(step Step, data FormData, files []UploadedFile, additional []AdditionalFile, caps platform.Capabilities) map[string]string {
	errs := make(map[string]string)

	switch step {
	case StepBasicInfo:
		if strings.TrimSpace(data.Domain) == "" {
			errs["domain"] = "Please enter your store domain"
		} else if !ValidDomain(data.Domain) {
			errs["domain"] = "Please enter a valid domain, e.g. mystore.com"
		}
		if strings.TrimSpace(data.PlatformID) == "" {
			errs["platform"] = "Please select your current platform"
		}

	case StepShopifySetup:
		if strings.TrimSpace(data.ShopifyURL) == "" {
			errs["shopify_url"] = "Please enter your Shopify store URL"
		} else if !ValidShopifyURL(data.ShopifyURL) {
			errs["shopify_url"] = "Please enter a valid Shopify URL, e.g. mystore.myshopify.com"
		}
		if strings.TrimSpace(data.ShopifyAccessToken) == "" {
			errs["shopify_access_token"] = "Please enter your Shopify access token"
		} else if !ValidAccessToken(data.ShopifyAccessToken) {
			errs["shopify_access_token"] = "Access token should start with shpat_"
		}
		if len(data.Items) == 0 {
			errs["items"] = "Please select at least one data type to migrate"
		}

	case StepDataAndFiles:
		validateDataAndFiles(errs, data, files, additional, caps)

	case StepReview:
		// read-only confirmation gate, nothing to check
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateDataAndFiles(errs map[string]string, data FormData, files []UploadedFile, additional []AdditionalFile, caps platform.Capabilities) {
	switch caps.Mode {
	case platform.ModeCSV:
		if len(files) == 0 {
			errs["files"] = "Please upload at least one file"
			return
		}

		covered := make(map[string]bool)
		var unmapped []string
		for _, f := range files {
			if f.SelectedType == "" {
				unmapped = append(unmapped, f.Name)
				continue
			}
			covered[f.SelectedType] = true
		}

		var missing []string
		for _, required := range caps.RequiredFiles {
			if !covered[required] {
				missing = append(missing, required)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			errs["files"] = "Please upload files for: " + strings.Join(missing, ", ")
		}
		if len(unmapped) > 0 {
			errs["file_types"] = "Please select a file type for: " + strings.Join(unmapped, ", ")
		}

	case platform.ModeAPI, platform.ModePlugin:
		for field := range caps.APIFields {
			if strings.TrimSpace(data.API[field]) == "" {
				label := caps.APIFields[field].Label
				if label == "" {
					label = field
				}
				errs["api_"+field] = fmt.Sprintf("Please enter %s", label)
			}
		}

	case platform.ModeCustom:
		if len(additional) == 0 {
			errs["files"] = "Please upload at least one file"
			return
		}
		for i, f := range additional {
			if strings.TrimSpace(f.CustomName) == "" {
				errs[fmt.Sprintf("custom_file_%d_name", i)] = fmt.Sprintf("Please enter a name for %s", f.Name)
			}
			if strings.TrimSpace(f.Description) == "" {
				errs[fmt.Sprintf("custom_file_%d_description", i)] = fmt.Sprintf("Please describe the contents of %s", f.Name)
			}
		}
	}
}

// ValidateAll runs every applicable step for a full submission and merges the
// results. Used by the submission endpoint, where the whole form arrives at
// once.
func ValidateAll(data FormData, files []UploadedFile, additional []AdditionalFile, caps platform.Capabilities) map[string]string {
	merged := make(map[string]string)
	for _, s := range stepOrder {
		if !s.applicable(caps) {
			continue
		}
		for k, v := range ValidateStep(s.step, data, files, additional, caps) {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}
