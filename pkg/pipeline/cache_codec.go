package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
)

// solveRecord is the cached payload for a solve: enough to reconstruct
// the Result fields a cache hit needs to fill in.
type solveRecord struct {
	Solution   problem.Solution `json:"solution"`
	Status     solve.Status     `json:"status"`
	Backtracks int              `json:"backtracks"`
}

func encodeSolveRecord(r solveRecord) []byte {
	data, _ := json.Marshal(r)
	return data
}

func decodeSolveRecord(data []byte) (solveRecord, error) {
	var r solveRecord
	err := json.Unmarshal(data, &r)
	return r, err
}

func encodeIIS(ids []string) []byte {
	data, _ := json.Marshal(ids)
	return data
}

func decodeIIS(data []byte) []string {
	var ids []string
	_ = json.Unmarshal(data, &ids)
	return ids
}
