package idn

import "github.com/ergochat/confusables"

// SkeletonFilter accepts candidates whose UTS #39 skeleton matches the
// skeleton of the original domain, i.e. variants that the Unicode
// confusables table itself considers indistinguishable.
type SkeletonFilter struct {
	original string
	skeleton string
}

func NewSkeletonFilter(original string) *SkeletonFilter {
	return &SkeletonFilter{original: original, skeleton: confusables.Skeleton(original)}
}

func (f *SkeletonFilter) Match(candidate string) bool {
	return confusables.Skeleton(candidate) == f.skeleton
}

func (f *SkeletonFilter) Skeleton() string { return f.skeleton }
