package store

import "github.com/yourorg/harsift/pkg/types"

type Store interface {
	CreateRun(harPath, outDir string) (*types.Run, error)
	FinishRun(id string, entriesTotal, included, responseFiles, requestFiles int) error
	GetRun(id string) (*types.Run, error)
	ListRuns() ([]types.Run, error)
	DeleteRun(id string) error

	SaveRows(runID string, rows []types.SummaryRow) error
	GetRows(runID string) ([]types.SummaryRow, error)

	Close() error
}
