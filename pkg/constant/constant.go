package constant

// Identity kinds
const (
	IdentityKindPerson int32 = 1 // acting as the account itself
	IdentityKindArtist int32 = 2 // acting as the account's artist profile
)

// Message types
const (
	MsgTypeText       int32 = 1
	MsgTypeAudio      int32 = 2
	MsgTypeVoice      int32 = 3
	MsgTypeTrackShare int32 = 4
)

// NoTargetArtist marks a conversation whose recipient was addressed as a
// plain person. Stored as 0 rather than NULL so the signature unique index
// still applies (MySQL unique indexes do not constrain duplicate NULLs).
const NoTargetArtist int64 = 0

// Platform Ids
const (
	PlatformIdUnknown = 0
	PlatformIdIOS     = 1
	PlatformIdAndroid = 2
	PlatformIdWeb     = 3
)

// PlatformIdToName converts platform Id to name
func PlatformIdToName(platformId int) string {
	switch platformId {
	case PlatformIdIOS:
		return "iOS"
	case PlatformIdAndroid:
		return "Android"
	case PlatformIdWeb:
		return "Web"
	default:
		return "Unknown"
	}
}

// Redis key patterns (without prefix, use RedisKey() to get full key)
const (
	redisKeyToken       = "token:%d:%d" // token:{account_id}:{platform_id}
	redisKeyUnreadBadge = "badge:%d"    // badge:{account_id}
)

// redisKeyPrefix is the global prefix for all Redis keys
var redisKeyPrefix = "backstage:"

// InitRedisKeyPrefix initializes the Redis key prefix from config
func InitRedisKeyPrefix(prefix string) {
	if prefix != "" {
		redisKeyPrefix = prefix
	}
}

// GetRedisKeyPrefix returns the current Redis key prefix
func GetRedisKeyPrefix() string {
	return redisKeyPrefix
}

// Redis key getters with prefix
func RedisKeyToken() string       { return redisKeyPrefix + redisKeyToken }
func RedisKeyUnreadBadge() string { return redisKeyPrefix + redisKeyUnreadBadge }
