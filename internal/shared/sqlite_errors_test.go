package shared

import (
	"errors"
	"testing"
)

func TestSQLiteErrorClassification(t *testing.T) {
	tests := []struct {
		err      error
		busy     bool
		locked   bool
		conflict bool
		unique   bool
		fk       bool
	}{
		{nil, false, false, false, false, false},
		{errors.New("SQLITE_BUSY: database is busy"), true, false, true, false, false},
		{errors.New("database is locked (5)"), false, true, true, false, false},
		{errors.New("UNIQUE constraint failed: plants.name, plants.variety"), false, false, false, true, false},
		{errors.New("FOREIGN KEY constraint failed"), false, false, false, false, true},
		{errors.New("some other error"), false, false, false, false, false},
	}

	for _, tt := range tests {
		if got := IsSQLiteBusyError(tt.err); got != tt.busy {
			t.Errorf("IsSQLiteBusyError(%v) = %v, expected %v", tt.err, got, tt.busy)
		}
		if got := IsSQLiteLockedError(tt.err); got != tt.locked {
			t.Errorf("IsSQLiteLockedError(%v) = %v, expected %v", tt.err, got, tt.locked)
		}
		if got := IsSQLiteConflictError(tt.err); got != tt.conflict {
			t.Errorf("IsSQLiteConflictError(%v) = %v, expected %v", tt.err, got, tt.conflict)
		}
		if got := IsSQLiteUniqueError(tt.err); got != tt.unique {
			t.Errorf("IsSQLiteUniqueError(%v) = %v, expected %v", tt.err, got, tt.unique)
		}
		if got := IsSQLiteForeignKeyError(tt.err); got != tt.fk {
			t.Errorf("IsSQLiteForeignKeyError(%v) = %v, expected %v", tt.err, got, tt.fk)
		}
	}
}
