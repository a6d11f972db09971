// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package compactor groups interchangeable gear items into buckets so the optimizer
// enumerates distinct stat contributions instead of distinct items.
package compactor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-build-optimizer/pkg/constants"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

// MainStatTable gives the value of a main stat at a rarity and level.
type MainStatTable interface {
	Value(key string, rarity, level int) (float64, bool)
}

type Options struct {
	Slots []string
	// AssumptionLevel raises every item below it to this level when reading its main stat.
	AssumptionLevel int
	AllowPartial    bool
	MainStats       MainStatTable
	Log             *logrus.Entry
}

type Result struct {
	Slots   []string
	Buckets [][]models.Bucket
	// Ignored holds the ids of items whose slot is not part of the problem.
	Ignored []string
}

// Count returns the number of buckets per slot, in slot order.
func (r Result) Count() []int {
	return pie.Map(r.Buckets, func(b []models.Bucket) int { return len(b) })
}

// Compact buckets the pool per slot. Two items share a bucket when they have the same slot, the same set,
// the same main stat contribution at the assumption level and the same substat contributions.
// The pool is not modified. An empty slot fails with models.ValidationErrorEmptySlot unless partial
// builds are allowed, in which case every slot also gets an empty bucket.
func Compact(pool []models.GearItem, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if len(opts.Slots) == 0 {
		return Result{}, models.ValidationErrorNoSlots
	}

	slotIndex := make(map[string]int, len(opts.Slots))
	for i, slot := range opts.Slots {
		slotIndex[slot] = i
	}

	grouped := make([]map[string]*models.Bucket, len(opts.Slots))
	for i := range grouped {
		grouped[i] = make(map[string]*models.Bucket)
	}

	var ignored []string
	for _, item := range pool {
		i, ok := slotIndex[item.Slot]
		if !ok {
			ignored = append(ignored, item.ID)
			continue
		}
		stats := contribution(item, opts)
		key := bucketKey(item.Set, stats)
		bucket, ok := grouped[i][key]
		if !ok {
			bucket = &models.Bucket{Slot: item.Slot, Set: item.Set, Stats: stats, Representative: item.ID}
			grouped[i][key] = bucket
		}
		bucket.ItemIDs = append(bucket.ItemIDs, item.ID)
		if item.ID < bucket.Representative {
			bucket.Representative = item.ID
		}
	}
	if len(ignored) > 0 {
		log.WithField("items", ignored).Warn("gear items with unknown slot are ignored")
	}

	result := Result{Slots: opts.Slots, Buckets: make([][]models.Bucket, len(opts.Slots)), Ignored: ignored}
	for i, slot := range opts.Slots {
		buckets := make([]models.Bucket, 0, len(grouped[i])+1)
		if opts.AllowPartial {
			buckets = append(buckets, models.EmptyBucket(slot))
		}
		for _, bucket := range grouped[i] {
			bucket.ItemIDs = pie.Sort(bucket.ItemIDs)
			buckets = append(buckets, *bucket)
		}
		buckets = pie.SortUsing(buckets, func(a, b models.Bucket) bool {
			return a.Representative < b.Representative
		})
		if len(buckets) == 0 {
			return Result{}, fmt.Errorf("%w: %s", models.ValidationErrorEmptySlot, slot)
		}
		result.Buckets[i] = buckets
	}

	log.WithFields(logrus.Fields{
		"items":   len(pool),
		"buckets": result.Count(),
	}).Debug("compacted gear pool")
	return result, nil
}

// contribution returns the stat vector of an item sorted by key, substats of the same key are summed.
func contribution(item models.GearItem, opts Options) []models.StatValue {
	values := make(map[string]float64, len(item.Substats)+1)
	if item.MainStatKey != "" {
		values[item.MainStatKey] += mainStatValue(item, opts)
	}
	for _, sub := range item.Substats {
		values[sub.Key] += sub.Value
	}
	keys := pie.Sort(pie.Keys(values))
	return pie.Map(keys, func(key string) models.StatValue {
		return models.StatValue{Key: key, Value: values[key]}
	})
}

func mainStatValue(item models.GearItem, opts Options) float64 {
	if opts.MainStats == nil || item.Level >= opts.AssumptionLevel {
		return item.MainStatValue
	}
	level := min(opts.AssumptionLevel, constants.MaxArtifactLevel)
	if value, ok := opts.MainStats.Value(item.MainStatKey, item.Rarity, level); ok {
		return value
	}
	return item.MainStatValue
}

func bucketKey(set string, stats []models.StatValue) string {
	var sb strings.Builder
	sb.WriteString(set)
	for _, stat := range stats {
		sb.WriteByte('|')
		sb.WriteString(stat.Key)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(stat.Value, 'g', -1, 64))
	}
	return sb.String()
}
