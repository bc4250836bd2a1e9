package engine

// lmrTable[depth][moveIndex] holds the late-move-reduction base amount,
// computed once at startup rather than re-derived on every node.
var lmrTable [64][128]int8

func init() {
	initLMRTable()
}

func initLMRTable() {
	for d := 0; d < 64; d++ {
		for m := 0; m < 128; m++ {
			r := 1
			if d >= 5 && m >= 5 {
				r++
			}
			lmrTable[d][m] = int8(r)
		}
	}
}
