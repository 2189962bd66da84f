package ingest

import "time"

// ProgressReporter receives callbacks as Sync proceeds through its
// phases, in the same shape as the teacher's indexer.ProgressReporter
// (internal/indexer/progress.go): discovery, per-file processing,
// embedding, and graph building each get a start/progress/complete
// triple so a CLI can drive progress bars off of it.
type ProgressReporter interface {
	OnDiscoveryStart()
	OnDiscoveryComplete(commitCount int)
	OnFileProcessingStart(totalFiles int)
	OnFileProcessed(fileName string)
	OnEmbeddingStart(totalChunks int)
	OnEmbeddingProgress(processedChunks int)
	OnWritingChunks()
	OnGraphBuildingStart(totalFiles int)
	OnGraphFileProcessed(processedFiles, totalFiles int, fileName string)
	OnGraphBuildingComplete(nodeCount, edgeCount int, duration time.Duration)
	OnComplete(stats *Stats)
}

// NoOpProgressReporter discards every callback; used when no progress
// reporter is supplied.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryStart()                                       {}
func (NoOpProgressReporter) OnDiscoveryComplete(commitCount int)                     {}
func (NoOpProgressReporter) OnFileProcessingStart(totalFiles int)                    {}
func (NoOpProgressReporter) OnFileProcessed(fileName string)                        {}
func (NoOpProgressReporter) OnEmbeddingStart(totalChunks int)                        {}
func (NoOpProgressReporter) OnEmbeddingProgress(processedChunks int)                 {}
func (NoOpProgressReporter) OnWritingChunks()                                        {}
func (NoOpProgressReporter) OnGraphBuildingStart(totalFiles int)                     {}
func (NoOpProgressReporter) OnGraphFileProcessed(processedFiles, totalFiles int, fileName string) {}
func (NoOpProgressReporter) OnGraphBuildingComplete(nodeCount, edgeCount int, duration time.Duration) {}
func (NoOpProgressReporter) OnComplete(stats *Stats)                                 {}
