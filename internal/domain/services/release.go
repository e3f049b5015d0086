// Package services holds the pure decision logic of a scrape run.
package services

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
)

// SelectionReason explains why a release was or was not picked
type SelectionReason string

// Release selection reasons
const (
	ReasonScrapeAll      SelectionReason = "scrape_all"
	ReasonRequested      SelectionReason = "requested"
	ReasonNotRequested   SelectionReason = "not_requested"
	ReasonNoPriorScrape  SelectionReason = "no_prior_scrape"
	ReasonNewer          SelectionReason = "newer_than_latest"
	ReasonNotNewer       SelectionReason = "not_newer_than_latest"
	ReasonNotYetScraped  SelectionReason = "not_yet_scraped"
	ReasonAlreadyScraped SelectionReason = "already_scraped"
)

// ReleaseDecision is the verdict for a single release tag
type ReleaseDecision struct {
	Tag    string
	Scrape bool
	Reason SelectionReason
}

// Message returns a human-readable explanation of the decision
func (d ReleaseDecision) Message(latestTag string) string {
	switch d.Reason {
	case ReasonScrapeAll:
		return fmt.Sprintf("Scraping release tag `%s` (all releases requested).", d.Tag)
	case ReasonRequested:
		return fmt.Sprintf("Scraping release tag `%s` (explicitly requested).", d.Tag)
	case ReasonNoPriorScrape:
		return fmt.Sprintf("Scraping release tag `%s` (no releases scraped yet).", d.Tag)
	case ReasonNewer:
		return fmt.Sprintf("Scraping release tag `%s` (newer than `%s`).", d.Tag, latestTag)
	case ReasonNotYetScraped:
		return fmt.Sprintf("Scraping release tag `%s` (not a version, not scraped before).", d.Tag)
	case ReasonNotRequested:
		return fmt.Sprintf("Skipping release tag `%s` (not in requested releases).", d.Tag)
	case ReasonNotNewer:
		return fmt.Sprintf("Skipping release tag `%s` (not newer than `%s`).", d.Tag, latestTag)
	case ReasonAlreadyScraped:
		return fmt.Sprintf("Skipping release tag `%s` (already scraped).", d.Tag)
	default:
		return fmt.Sprintf("Release tag `%s`: %s", d.Tag, d.Reason)
	}
}

// ReleaseSelector decides which releases a run should scrape.
//
// Explicit flags win: --scrape-all-releases takes everything and a list of
// requested tags takes exactly those. Without either, only tags strictly
// greater than the latest scraped tag are picked. Tags that are not versions
// fall back to a membership check against the scraped set.
type ReleaseSelector struct {
	scrapeAll bool
	requested map[string]bool
	scraped   map[string]bool
	latest    *semver.Version
	latestTag string
}

// NewReleaseSelector builds a selector from the run options and the tags already on disk
func NewReleaseSelector(opts entities.ScrapeOptions, scrapedTags []string) *ReleaseSelector {
	s := &ReleaseSelector{
		scrapeAll: opts.ScrapeAll,
		requested: make(map[string]bool, len(opts.Releases)),
		scraped:   make(map[string]bool, len(scrapedTags)),
	}

	for _, tag := range opts.Releases {
		s.requested[tag] = true
	}

	for _, tag := range scrapedTags {
		s.scraped[tag] = true

		v, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if s.latest == nil || v.GreaterThan(s.latest) {
			s.latest = v
			s.latestTag = tag
		}
	}

	return s
}

// LatestScrapedTag returns the greatest version-like tag already scraped, or ""
func (s *ReleaseSelector) LatestScrapedTag() string {
	return s.latestTag
}

// Decide returns whether the release with the given tag should be scraped
func (s *ReleaseSelector) Decide(tag string) ReleaseDecision {
	d := ReleaseDecision{Tag: tag}

	switch {
	case s.scrapeAll:
		d.Scrape, d.Reason = true, ReasonScrapeAll
	case len(s.requested) > 0:
		if s.requested[tag] {
			d.Scrape, d.Reason = true, ReasonRequested
		} else {
			d.Reason = ReasonNotRequested
		}
	case s.latest == nil && len(s.scraped) == 0:
		d.Scrape, d.Reason = true, ReasonNoPriorScrape
	default:
		d.Scrape, d.Reason = s.decideIncremental(tag)
	}

	return d
}

func (s *ReleaseSelector) decideIncremental(tag string) (bool, SelectionReason) {
	v, err := semver.NewVersion(tag)
	if err != nil || s.latest == nil {
		if s.scraped[tag] {
			return false, ReasonAlreadyScraped
		}
		return true, ReasonNotYetScraped
	}

	if v.GreaterThan(s.latest) {
		return true, ReasonNewer
	}
	return false, ReasonNotNewer
}
