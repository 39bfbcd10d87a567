package storage

import "liquidityRange/internal/model"

// SnapshotSink defines a sink for distribution snapshots.
type SnapshotSink interface {
	PutSnapshotBatch(snapshots []model.DistributionSnapshot) error
}
