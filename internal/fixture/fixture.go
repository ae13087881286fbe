// Package fixture writes a small but complete dashboard data directory for
// tests.
package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
)

// Drama synopsis tables. The hit map has no cluster column; the flop map has
// one.
const (
	Deltas = "keyword,direction,delta_value\n" +
		"love,hit+,0.9\n" +
		"family,hit+,0.4\n" +
		"war,nonhit+,0.7\n"
	HitMap = "title,topic,umap_x,umap_y,hit_score,imdb_id\n" +
		"Alpha,0,1.0,2.0,0.91234,tt1\n" +
		"Beta,1,1.5,2.5,,tt2\n" +
		"Gamma,2,0.1,0.2,0.5,tt3\n" +
		"Delta,-1,3.0,3.0,0.1,\n"
	HitClusters = "클러스터,토픽번호,키워드\n" +
		"0,0,\"love, family\"\n" +
		"0,1,\"love\"\n" +
		"1,2,\"space\"\n"
	HitTopics = "Topic,Count,Name,Representative_Docs_Titles\n" +
		"-1,1,-1_noise,Delta\n" +
		"0,1,0_love_family,Alpha|Gamma\n" +
		"1,1,1_war_army,Beta\n" +
		"2,1,2_space_ship,Gamma\n"
	FlopMap      = "title,topic,cluster,umap_x,umap_y\nOmega,0,4,0,0\n"
	FlopClusters = "cluster,topic_id,keywords\n4,0,\"crime\"\n"
	FlopTopics   = "Topic,Count,Name,Representative_Docs_Titles\n0,1,0_crime,Omega\n"
	Comparison   = "hit_unique_keyword,hit_unique_score,flop_unique_keyword,flop_unique_score\n" +
		"heist,0.4,zombie,0.3\n" +
		",0,rain,0.1\n"
	Overview = "title,type,release_year,hit,vote_average,num_reviews,hit_score\n" +
		"Alpha,drama,2019,1,8.0,100,0.9\n" +
		"Beta,drama,2020,0,6.0,50,0.2\n" +
		"Omega,movie,2020,0,5.0,10,0.1\n"
)

// PosterRow is one row of a poster parquet table.
type PosterRow struct {
	IMDbID string `parquet:"imdb_id"`
	Title  string `parquet:"title"`
	Path   string `parquet:"poster_path"`
}

// ReviewRow is one row of the review summary by type.
type ReviewRow struct {
	Type         string  `parquet:"content_type"`
	Year         int64   `parquet:"review_year"`
	HitLabel     string  `parquet:"hit_label"`
	Topic        int64   `parquet:"topic"`
	ReviewCount  int64   `parquet:"review_count"`
	AvgSentiment float64 `parquet:"avg_sentiment"`
}

// ReviewAllRow is one row of the overall review summary. It has no content
// type column.
type ReviewAllRow struct {
	Year         int64   `parquet:"review_year"`
	HitLabel     string  `parquet:"hit_label"`
	Topic        int64   `parquet:"topic"`
	ReviewCount  int64   `parquet:"review_count"`
	AvgSentiment float64 `parquet:"avg_sentiment"`
}

// KeywordRow is one row of the review keyword table.
type KeywordRow struct {
	Type    string  `parquet:"content_type"`
	Keyword string  `parquet:"keyword"`
	Score   float64 `parquet:"score"`
}

// Reviews are the review summary rows written by DataDir.
var Reviews = []ReviewRow{
	{Type: "drama", Year: 2019, HitLabel: "hit", Topic: 0, ReviewCount: 100, AvgSentiment: 0.8},
	{Type: "drama", Year: 2020, HitLabel: "non-hit", Topic: 1, ReviewCount: 40, AvgSentiment: 0.4},
	{Type: "movie", Year: 2020, HitLabel: "hit", Topic: 0, ReviewCount: 60, AvgSentiment: 0.6},
	{Type: "anime", Year: 2020, HitLabel: "hit", Topic: 2, ReviewCount: 1, AvgSentiment: 0.1},
}

// ReviewsAll are the overall review summary rows written by DataDir.
var ReviewsAll = []ReviewAllRow{
	{Year: 2019, HitLabel: "hit", Topic: 0, ReviewCount: 160, AvgSentiment: 0.7},
	{Year: 2020, HitLabel: "non-hit", Topic: 1, ReviewCount: 41, AvgSentiment: 0.4},
}

// WriteFile writes content below root, creating directories.
func WriteFile(t testing.TB, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// WriteParquet writes rows as a parquet file below root.
func WriteParquet[T any](t testing.TB, root, rel string, rows []T) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, parquet.WriteFile(path, rows))
}

// DataDir writes the drama synopsis, review, overview and poster tables into
// a temporary directory and returns it. No movie synopsis is written.
func DataDir(t testing.TB) string {
	t.Helper()
	root := t.TempDir()

	WriteFile(t, root, dataset.DeltaPath("drama"), Deltas)
	WriteFile(t, root, dataset.MapPath("drama", dataset.Hit), HitMap)
	WriteFile(t, root, dataset.ClustersPath("drama", dataset.Hit), HitClusters)
	WriteFile(t, root, dataset.TopicInfoPath("drama", dataset.Hit), HitTopics)
	WriteFile(t, root, dataset.MapPath("drama", dataset.Flop), FlopMap)
	WriteFile(t, root, dataset.ClustersPath("drama", dataset.Flop), FlopClusters)
	WriteFile(t, root, dataset.TopicInfoPath("drama", dataset.Flop), FlopTopics)
	WriteFile(t, root, dataset.ComparisonPath("drama"), Comparison)
	WriteFile(t, root, dataset.DefaultOverviewPath, Overview)

	WriteParquet(t, root, dataset.PosterPath("drama"), []PosterRow{
		{IMDbID: "tt1", Title: "Alpha", Path: "/alpha.jpg"},
		{IMDbID: "tt3", Title: "Gamma"},
	})
	WriteParquet(t, root, filepath.Join(dataset.ReviewDir, dataset.ReviewSummaryByTypeFile), Reviews)
	WriteParquet(t, root, filepath.Join(dataset.ReviewDir, dataset.ReviewSummaryFile), ReviewsAll)
	WriteParquet(t, root, filepath.Join(dataset.ReviewDir, dataset.ReviewKeywordsFile), []KeywordRow{
		{Type: "drama", Keyword: "acting", Score: 0.5},
		{Type: "movie", Keyword: "plot", Score: 0.3},
	})
	return root
}
