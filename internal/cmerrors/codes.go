package cmerrors

// Error codes, grouped by the kind they carry. New codes should slot into
// the existing numeric band for their kind rather than starting a new one.
const (
	// Not-found errors (100-199)
	ErrChunkNotFound    = "ERR_101_CHUNK_NOT_FOUND"
	ErrLocationNotFound = "ERR_102_LOCATION_NOT_FOUND"
	ErrNodeNotFound     = "ERR_103_NODE_NOT_FOUND"
	ErrModuleNotFound   = "ERR_104_MODULE_NOT_FOUND"
	ErrBranchNotFound   = "ERR_105_BRANCH_NOT_FOUND"
	ErrCommitNotFound   = "ERR_106_COMMIT_NOT_FOUND"

	// Parse errors (200-299)
	ErrParseFailed    = "ERR_201_PARSE_FAILED"
	ErrExtractorPanic = "ERR_202_EXTRACTOR_PANIC"

	// IO errors (300-399)
	ErrFileNotFound   = "ERR_301_FILE_NOT_FOUND"
	ErrFilePermission = "ERR_302_FILE_PERMISSION"
	ErrRepoOpenFailed = "ERR_303_REPO_OPEN_FAILED"

	// Storage errors (400-499)
	ErrStorageWrite    = "ERR_401_STORAGE_WRITE"
	ErrStorageRead     = "ERR_402_STORAGE_READ"
	ErrSchemaMigration = "ERR_403_SCHEMA_MIGRATION"
	ErrVectorIndex     = "ERR_404_VECTOR_INDEX"
	ErrFTSIndex        = "ERR_405_FTS_INDEX"

	// Constraint violations (500-599)
	ErrDuplicateEdge     = "ERR_501_DUPLICATE_EDGE"
	ErrDuplicateLocation = "ERR_502_DUPLICATE_LOCATION"
	ErrHashMismatch      = "ERR_503_HASH_MISMATCH"

	// Invalid query (600-699)
	ErrInvalidQuerySyntax = "ERR_601_INVALID_QUERY_SYNTAX"
	ErrInvalidFilterKey   = "ERR_602_INVALID_FILTER_KEY"
	ErrInvalidGlob        = "ERR_603_INVALID_GLOB"
	ErrInvalidDate        = "ERR_604_INVALID_DATE"

	// Cancelled / timeout (700-799)
	ErrCancelled     = "ERR_701_CANCELLED"
	ErrQueryTimeout  = "ERR_702_QUERY_TIMEOUT"
	ErrEmbedTimeout  = "ERR_703_EMBED_TIMEOUT"

	// Model mismatch (800-899)
	ErrEmbeddingDimensionMismatch = "ERR_801_EMBEDDING_DIMENSION_MISMATCH"
	ErrModelIDMismatch            = "ERR_802_MODEL_ID_MISMATCH"

	// Internal (900-999)
	ErrInternal = "ERR_901_INTERNAL"
)
