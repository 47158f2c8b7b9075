package crawler

import (
	"sort"
	"time"

	"github.com/IamRajen/PriceTracker/logger"
)

// Orchestrator fans a search query out across all registered sources and
// drives the page -> links -> details pipeline for each. Sources are
// processed independently; a source failing completely still leaves the
// other sources' results intact.
type Orchestrator struct {
	registry Registry
	log      *logger.Logger
}

// NewOrchestrator creates an orchestrator over a source registry
func NewOrchestrator(registry Registry) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		log:      logger.ForCrawler(),
	}
}

// Crawl returns the validated product records per source id. A source
// yielding zero pages or zero extractable records maps to an empty list.
func (o *Orchestrator) Crawl(query string) map[string][]ProductRecord {
	results := make(map[string][]ProductRecord, len(o.registry))

	names := make([]string, 0, len(o.registry))
	for name := range o.registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		results[name] = o.crawlSource(name, o.registry[name], query)
	}
	return results
}

func (o *Orchestrator) crawlSource(name string, entry SourceEntry, query string) []ProductRecord {
	log := o.log.WithField("source", name)
	records := []ProductRecord{}

	pages := entry.Crawler.CrawlPages(query)
	log.Debug().Int("pages", len(pages)).Str("query", query).Msg("Fetched search pages")

	fetched := 0
	for _, page := range pages {
		links := entry.Parser.ExtractLinks(page)
		log.Debug().Int("links", len(links)).Msg("Extracted product links")

		for _, link := range links {
			if fetched > 0 {
				time.Sleep(entry.Config.DetailDelay)
			}
			fetched++

			record, err := entry.Parser.ExtractDetails(link)
			if err != nil {
				log.Warn().Err(err).Str("link", link).Msg("Detail extraction failed, skipping link")
				continue
			}
			if !record.Complete() {
				log.Debug().Str("link", link).Msg("Dropping record missing title, price or seller")
				continue
			}
			records = append(records, record)
		}
	}

	log.Info().Int("records", len(records)).Str("query", query).Msg("Source crawl finished")
	return records
}
