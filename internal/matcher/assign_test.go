package matcher

import "testing"

func TestAssignMinCost_Empty(t *testing.T) {
	if result := assignMinCost(nil); result != nil {
		t.Errorf("expected nil for empty cost matrix, got %v", result)
	}
}

func TestAssignMinCost_NoColumns(t *testing.T) {
	result := assignMinCost([][]float64{{}, {}})
	if len(result) != 2 || result[0] != -1 || result[1] != -1 {
		t.Errorf("expected [-1 -1], got %v", result)
	}
}

func TestAssignMinCost_SquareOptimal(t *testing.T) {
	// Optimal: row0→col0 (1), row1→col1 (4), row2→col2 (5) = 10
	cost := [][]float64{
		{1, 2, 3},
		{4, 4, 6},
		{9, 8, 5},
	}
	result := assignMinCost(cost)
	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}

	total := 0.0
	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned", i)
			continue
		}
		total += cost[i][j]
	}
	if total != 10 {
		t.Errorf("expected optimal cost 10, got %v (assignments: %v)", total, result)
	}
}

func TestAssignMinCost_Forbidden(t *testing.T) {
	cost := [][]float64{
		{1, 2},
		{forbiddenCost, forbiddenCost},
	}
	result := assignMinCost(cost)
	if result[0] != 0 {
		t.Errorf("row 0 should take column 0, got %d", result[0])
	}
	if result[1] != -1 {
		t.Errorf("row 1 should be unassigned, got %d", result[1])
	}
}

func TestAssignMinCost_Rectangular(t *testing.T) {
	// More rows than columns: one row stays unassigned.
	cost := [][]float64{
		{5},
		{1},
		{3},
	}
	result := assignMinCost(cost)
	assigned := 0
	for _, j := range result {
		if j >= 0 {
			assigned++
		}
	}
	if assigned != 1 || result[1] != 0 {
		t.Errorf("expected only row 1 assigned, got %v", result)
	}

	wide := [][]float64{{7, 2, 9}}
	if got := assignMinCost(wide); got[0] != 1 {
		t.Errorf("expected column 1, got %v", got)
	}
}
