package pgstore

import (
	"errors"

	"github.com/Masterminds/squirrel"
)

var sqBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var ErrBadQuery = errors.New("bad query")

const table = "posted_images"
