package game

import (
	"math/rand"
	"slices"
)

// Selection 玩家选择的号码集合：去重、保留插入顺序，最多 MaxSelection 个
type Selection struct {
	nums []int
}

// NewSelection 用给定号码构建选择，越界、重复或超出上限的号码被丢弃
func NewSelection(nums ...int) *Selection {
	s := &Selection{}
	for _, n := range nums {
		if s.Contains(n) {
			continue
		}
		s.add(n)
	}
	return s
}

// Toggle 已选中则移除，否则在未满时加入；返回集合是否变化
func (s *Selection) Toggle(n int) bool {
	if !InRange(n) {
		return false
	}
	if i := slices.Index(s.nums, n); i >= 0 {
		s.nums = slices.Delete(s.nums, i, i+1)
		return true
	}
	return s.add(n)
}

func (s *Selection) add(n int) bool {
	if !InRange(n) || len(s.nums) >= MaxSelection {
		return false
	}
	s.nums = append(s.nums, n)
	return true
}

func (s *Selection) Contains(n int) bool { return slices.Contains(s.nums, n) }

func (s *Selection) Len() int { return len(s.nums) }

// Values 返回按插入顺序的副本
func (s *Selection) Values() []int { return slices.Clone(s.nums) }

// Replace 整体替换（自动选号）
func (s *Selection) Replace(nums []int) {
	s.nums = nil
	for _, n := range nums {
		if !s.Contains(n) {
			s.add(n)
		}
	}
}

func (s *Selection) Clear() { s.nums = nil }

// InRange 号码是否在 [1, NumberCount]
func InRange(n int) bool { return n >= 1 && n <= NumberCount }

// AutoPick 无放回地均匀抽取 MaxSelection 个号码。
// 仅是前端便利功能，与链上开奖无关。
func AutoPick(rng *rand.Rand) []int {
	perm := rng.Perm(NumberCount)
	out := make([]int, MaxSelection)
	for i := range out {
		out[i] = perm[i] + 1
	}
	return out
}

// SameNumbers 两组号码是否为同一集合（不计顺序）
func SameNumbers(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
