package engine

import (
	"errors"

	"github.com/kshade/chessforge/goosemg"
)

// ErrInvalidFEN and ErrIllegalMove alias the goosemg sentinels so engine
// callers can errors.Is against one name regardless of which layer raised
// the error (goosemg.ParseFEN/PlayUCIMove, or engine code that just
// forwards their result). ErrResizeFailed has no goosemg equivalent: the
// transposition table is engine-only.
var (
	ErrInvalidFEN   = goosemg.ErrInvalidFEN
	ErrIllegalMove  = goosemg.ErrIllegalMove
	ErrResizeFailed = errors.New("engine: transposition table resize failed")
)
