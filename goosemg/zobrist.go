package goosemg

import "math/rand"

// zobristRandomSeed is this engine's own fixed seed for the random table
// below. Any fixed seed works equally well for Zobrist purposes (the
// keys only need to be well-distributed and stable across a run, not
// cryptographically unpredictable); this one is held constant purely so
// a hash computed today matches one computed tomorrow.
const zobristRandomSeed = 0x6761746F

// zobristTable packs every key this engine needs to XOR together into one
// flat, contiguous random table instead of four separately-sized arrays —
// one init loop fills the whole thing, and each key "group" (pieces,
// castling rights, en-passant file, side to move) is just a window into
// it addressed by the offset constants below. Grounded on the single
// big-table layout used by Polyglot-style Zobrist books (as seen in the
// retrieval pack's hailam-chessplay/internal/board/polyglot.go), adapted
// here to a self-generated table rather than Polyglot's published
// constants, since nothing in this engine needs interop with external
// Polyglot books.
const (
	zobristPieceOff    = 0
	zobristPieceCount  = 12 * 64
	zobristCastleOff   = zobristPieceOff + zobristPieceCount
	zobristCastleCount = 16
	zobristEPOff       = zobristCastleOff + zobristCastleCount
	zobristEPCount     = 8
	zobristSideOff     = zobristEPOff + zobristEPCount
	zobristTableSize   = zobristSideOff + 1
)

var zobristTable [zobristTableSize]uint64

func init() {
	rnd := rand.New(rand.NewSource(zobristRandomSeed))
	for i := range zobristTable {
		zobristTable[i] = rnd.Uint64()
	}
}

func zobristPieceKey(p Piece, sq int) uint64 { return zobristTable[zobristPieceOff+int(p)*64+sq] }
func zobristCastleKey(rights CastlingRights) uint64 {
	return zobristTable[zobristCastleOff+int(rights)]
}
func zobristEPKey(file int) uint64 { return zobristTable[zobristEPOff+file] }
func zobristSideKey() uint64       { return zobristTable[zobristSideOff] }

// zobristPiece, zobristCastle, zobristEnPassant and zobristSide are
// pre-expanded views over zobristTable, addressed the way makemove.go and
// board.go index into Zobrist keys directly rather than through the
// zobrist*Key helpers above.
var (
	zobristPiece     [12][64]uint64
	zobristCastle    [16]uint64
	zobristEnPassant [8]uint64
	zobristSide      uint64
)

func init() {
	for p := 0; p < 12; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = zobristPieceKey(Piece(p), sq)
		}
	}
	for r := 0; r < 16; r++ {
		zobristCastle[r] = zobristCastleKey(CastlingRights(r))
	}
	for f := 0; f < 8; f++ {
		zobristEnPassant[f] = zobristEPKey(f)
	}
	zobristSide = zobristSideKey()
}

// ComputeZobrist calculates the Zobrist hash for the current board state from scratch.
func (b *Board) ComputeZobrist() uint64 {
	var key uint64

	for sq := 0; sq < 64; sq++ {
		if p := b.pieceOn[sq]; p != NoPiece {
			key ^= zobristPieceKey(p, sq)
		}
	}

	if b.sideToMove == Black {
		key ^= zobristSideKey()
	}

	key ^= zobristCastleKey(b.castlingRights)

	if b.enPassantSquare != NoSquare {
		key ^= zobristEPKey(int(b.enPassantSquare % 8))
	}

	return key
}
