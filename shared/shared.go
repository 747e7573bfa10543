package shared

import (
	"context"
	"errors"
	"math"
	"reflect"
	"roadbook/shared/cache"
	"roadbook/shared/constant"
	"roadbook/shared/dto"
	"roadbook/shared/timezone"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheKeySeparator = ":"
	uuidLength        = 36
)

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the fields of a struct into a map of updated fields.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins a cache prefix and its parts, e.g. "slot:availability:<road>:<hour>".
func BuildCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}

	return prefix + cacheKeySeparator + strings.Join(parts, cacheKeySeparator)
}

// InvalidateCaches removes every key under prefix. Failures are logged, the cache is best effort.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// IsUUID reports whether id is a canonical, hyphenated UUID. Ids failing it can never match a row.
func IsUUID(id string) bool {
	return len(id) == uuidLength && uuid.Validate(id) == nil
}

// AvailabilityGeneration returns the cache generation of a road, 0 while it was never invalidated.
func AvailabilityGeneration(ctx context.Context, redisCache cache.RedisCache, roadID string) (int64, error) {
	var generation int64

	err := redisCache.Get(ctx, BuildCacheKey(constant.CacheKeyAvailabilityGeneration, roadID), &generation)
	if err != nil && !errors.Is(err, cache.Nil) {
		return 0, err
	}

	return generation, nil
}

// AvailabilityCacheKey is the key of one availability window computed under generation.
func AvailabilityCacheKey(roadID string, generation int64, parts ...string) string {
	return BuildCacheKey(constant.CacheKeyAvailability, append([]string{roadID, strconv.FormatInt(generation, 10)}, parts...)...)
}

// InvalidateAvailability moves a road to its next cache generation, so an entry written by a read
// that started earlier is never looked up again, then drops the entries it already has.
func InvalidateAvailability(ctx context.Context, redisCache cache.RedisCache, roadID string) {
	if _, err := redisCache.Increment(ctx, BuildCacheKey(constant.CacheKeyAvailabilityGeneration, roadID)); err != nil {
		log.Error().Err(err).Str("road_id", roadID).Msg("failed to bump availability generation")
	}

	InvalidateCaches(ctx, redisCache, BuildCacheKey(constant.CacheKeyAvailability, roadID))
}
