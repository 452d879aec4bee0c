/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: snapshot.go
Description: Conversion between fitted state and its persisted snapshot.
*/

package core

import (
	"fmt"

	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/kleascm/cubist-go/pkg/model"
	"github.com/kleascm/cubist-go/pkg/storage"
)

// Snapshot captures the fitted state for storage.Save
func (e *Estimator) Snapshot() (*storage.Snapshot, error) {
	st, err := e.State()
	if err != nil {
		return nil, err
	}
	return &storage.Snapshot{
		Version:      storage.SnapshotVersion,
		ID:           st.ID,
		CreatedAt:    st.CreatedAt,
		Seed:         st.Seed,
		Neighbors:    e.params.Neighbors,
		Schema:       st.Schema,
		Names:        st.Names,
		TrainingData: st.TrainingData,
		Model:        st.Model,
		MaxDistance:  st.MaxDistance,
		Usage:        st.Usage,
		Variables:    st.Variables,
	}, nil
}

// Restore replaces the fitted state with a loaded snapshot. Split percentiles are
// not kept in snapshots, so restored splits carry none.
func (e *Estimator) Restore(snap *storage.Snapshot) error {
	if snap == nil || snap.Schema == nil {
		return &interfaces.ModelStateError{Reason: "snapshot has no schema"}
	}
	if snap.MaxDistance.Valid && snap.MaxDistance.Value < 0 {
		return &interfaces.ModelStateError{Reason: fmt.Sprintf("snapshot maxd %v is negative", snap.MaxDistance.Value)}
	}

	variables := snap.Schema.FeatureNames()
	desc, err := model.Parse(snap.Model, variables)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	desc.MaxDistance = snap.MaxDistance

	usage := snap.Usage
	if len(usage) != len(variables) {
		usage = make([]model.UsageStat, len(variables))
		for i, v := range variables {
			usage[i] = model.UsageStat{Variable: v}
		}
	}

	e.fitMu.Lock()
	defer e.fitMu.Unlock()
	e.state.Store(&FittedState{
		ID:           snap.ID,
		CreatedAt:    snap.CreatedAt,
		Seed:         snap.Seed,
		Schema:       snap.Schema,
		Names:        snap.Names,
		TrainingData: snap.TrainingData,
		Model:        snap.Model,
		MaxDistance:  snap.MaxDistance,
		Description:  desc,
		Usage:        usage,
		Variables:    desc.Summary(),
		Splits:       desc.Splits(nil),
	})
	return nil
}
