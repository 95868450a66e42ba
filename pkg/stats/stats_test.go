package stats

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lemonberrylabs/dice-notation/pkg/dice"
)

func TestRecord(t *testing.T) {
	s := New()

	s.Record(dice.Result{Value: 7}, nil)
	s.Record(dice.Result{}, dice.NewDivideByZeroError())
	s.Record(dice.Result{}, dice.NewDivideByZeroError())
	s.Record(dice.Result{}, dice.NewTooManyDiceError(10))
	s.Record(dice.Result{}, errors.New("boom"))

	snap := s.Snapshot()
	assert.Equal(t, int64(5), snap.Evaluations)
	assert.Equal(t, int64(4), snap.Failures)
	assert.Equal(t, int64(1), snap.Successes())
	assert.Equal(t, map[string]int64{
		"DivideByZero":      2,
		"TooManyDiceRolled": 1,
		"Internal":          1,
	}, snap.FailuresByKind)
	assert.False(t, snap.StartedAt.IsZero())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.Record(dice.Result{}, dice.NewInvalidModifierError("x"))

	snap := s.Snapshot()
	snap.FailuresByKind["InvalidModifier"] = 100

	assert.Equal(t, int64(1), s.Snapshot().FailuresByKind["InvalidModifier"])
}

func TestRecordConcurrent(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				err = dice.NewDivideByZeroError()
			}
			s.Record(dice.Result{}, err)
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, int64(50), snap.Evaluations)
	assert.Equal(t, int64(25), snap.Failures)
}
