// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attachment

import "context"

// Repository reads attachment records.
//
// FindIDs returns every attachment whose serialized metadata contains the
// relative path; zero or several matches are for the caller to judge.
type Repository interface {
	FindIDs(ctx context.Context, relativePath string) ([]int64, error)
	FindByID(ctx context.Context, id int64) (*Record, error)
}
