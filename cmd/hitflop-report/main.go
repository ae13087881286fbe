package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/hitflop/pkg/hitflop"
	"github.com/cognicore/hitflop/pkg/hitflop/config"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

type report struct {
	ContentType string         `json:"content_type"`
	Cohorts     []cohortReport `json:"cohorts"`
	HitOnly     []keywordJSON  `json:"hit_only_keywords,omitempty"`
	FlopOnly    []keywordJSON  `json:"flop_only_keywords,omitempty"`
	StopTerms   []string       `json:"stop_terms,omitempty"`
}

type cohortReport struct {
	Category string         `json:"category"`
	Keywords []keywordJSON  `json:"keywords"`
	Titles   int            `json:"titles"`
	Groups   []topics.Group `json:"groups,omitempty"`
	Missing  string         `json:"missing,omitempty"`
}

type keywordJSON struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

func main() {
	var (
		dataDir     = flag.String("data", "", "Data directory (required)")
		contentType = flag.String("type", "movie", "Content type: movie or drama")
		view        = flag.String("view", "cluster", "Grouping: cluster or topic")
		topN        = flag.Int("top", dataset.DefaultTopN, "Keywords per list")
		namesCfg    = flag.String("names", "", "Optional: topic and cluster names file")
		stoplistCfg = flag.String("stoplist", "", "Optional: stoplist file")
	)
	flag.Parse()

	if *dataDir == "" {
		log.Fatal("--data required")
	}
	kind, err := topics.ParseKind(*view)
	if err != nil {
		log.Fatal(err)
	}
	ct, err := dataset.ParseContentType(*contentType)
	if err != nil {
		log.Fatal(err)
	}

	loader := config.Loader{NamesPath: *namesCfg, StoplistPath: *stoplistCfg}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}

	data := dataset.NewLoader(dataset.LoaderOptions{Root: *dataDir, Stops: components.Stoplist})
	dash := hitflop.New(hitflop.Options{
		Loader: data,
		Names:  components.Names,
		Stops:  components.Stoplist,
	})
	defer dash.Close()

	ctx := context.Background()
	rep := report{ContentType: ct, StopTerms: components.Stoplist.All()}
	for _, cat := range []string{dataset.Hit, dataset.Flop} {
		rep.Cohorts = append(rep.Cohorts, buildCohort(ctx, dash, ct, cat, kind, *topN))
	}

	b, err := data.Bundle(ctx, ct)
	if err == nil && b.Comparison != nil {
		hit, flop := dataset.CompareKeywords(b.Comparison, *topN)
		rep.HitOnly, rep.FlopOnly = toJSON(hit, len(hit)), toJSON(flop, len(flop))
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func buildCohort(ctx context.Context, dash *hitflop.Dashboard, ct, cat string, kind topics.Kind, topN int) cohortReport {
	c := cohortReport{Category: cat, Keywords: []keywordJSON{}}

	kws, err := dash.Keywords(ctx, ct, cat)
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		c.Missing = "keywords"
	case err != nil:
		log.Fatalf("load %s %s keywords: %v", ct, cat, err)
	default:
		c.Keywords = toJSON(kws, topN)
	}

	v, err := dash.View(ctx, ct, cat)
	switch {
	case errors.Is(err, internalerr.ErrNotFound), errors.Is(err, internalerr.ErrSchema):
		if c.Missing != "" {
			c.Missing += ", "
		}
		c.Missing += "topics"
	case err != nil:
		log.Fatalf("load %s %s topics: %v", ct, cat, err)
	default:
		c.Titles = len(v.Titles)
		c.Groups = v.Distribution(kind)
	}
	return c
}

func toJSON(kws []dataset.Keyword, limit int) []keywordJSON {
	if limit > len(kws) {
		limit = len(kws)
	}
	out := make([]keywordJSON, 0, limit)
	for _, k := range kws[:limit] {
		out = append(out, keywordJSON{Keyword: k.Keyword, Score: k.Score})
	}
	return out
}
