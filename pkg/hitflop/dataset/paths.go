package dataset

import "path/filepath"

// Paths relative to the data root.
const (
	SynopsisDir = "02_synopsis"
	ReviewDir   = "03_review"
	EmbedDir    = "embeddings"

	DeltaFile      = "tfidf_delta_keywords.csv"
	ComparisonFile = "keyword_comparison.csv"

	ReviewKeywordsFile      = "review_tfidf_keywords_all.parquet"
	ReviewSummaryFile       = "review_topic_summary_30w_all.parquet"
	ReviewSummaryByTypeFile = "review_topic_summary_30w_by_type.parquet"

	DefaultOverviewPath = "01_overview/titles.csv"
)

// DeltaPath is the TF-IDF delta table of a content type.
func DeltaPath(contentType string) string {
	return filepath.Join(SynopsisDir, contentType, DeltaFile)
}

// MapPath is the UMAP map of a cohort.
func MapPath(contentType, category string) string {
	return filepath.Join(SynopsisDir, contentType, category+"_umap_map.csv")
}

// ClustersPath is the cluster table of a cohort.
func ClustersPath(contentType, category string) string {
	return filepath.Join(SynopsisDir, contentType, category+"_clusters.csv")
}

// TopicInfoPath is the topic-info table of a cohort.
func TopicInfoPath(contentType, category string) string {
	return filepath.Join(SynopsisDir, contentType, category+"_topic_info.csv")
}

// ComparisonPath is the optional keyword comparison table.
func ComparisonPath(contentType string) string {
	return filepath.Join(SynopsisDir, contentType, ComparisonFile)
}

// PosterPath is the optional poster table of a content type.
func PosterPath(contentType string) string {
	return filepath.Join(EmbedDir, contentType+"_text_embedding_poster.parquet")
}
