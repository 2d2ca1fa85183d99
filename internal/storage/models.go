// Package storage is the persistence layer for the authentication core:
// a thin, hand-written query layer over jackc/pgx/v5 mirroring the
// capability set described in the design notes — query, query-one,
// query-optional, execute, begin, commit — rather than a generated
// client, since the entities here are few and the queries are simple
// enough to read directly.
package storage

import "time"

// User is the stable-identity record every session and permission
// ultimately resolves to.
type User struct {
	ID            int32
	Username      string
	Email         *string
	EmailVerified bool
	Level         int32
	PasswordHash  string
}

// UserSession is one issued, possibly-expired, possibly-dropped login.
type UserSession struct {
	Token    string
	Owner    int32
	IssuedOn time.Time
	Expires  time.Time
	Dropped  bool
	Verified bool
	UseCSRF  bool
}

// AuthOtpAlgo is the keyed-hash family backing a user's TOTP secret, as
// stored (the column is a small int; security/otp's enrollment.go maps
// it to/from the otp.Algo string form).
type AuthOtpAlgo int16

const (
	AuthOtpAlgoSHA1 AuthOtpAlgo = iota
	AuthOtpAlgoSHA256
	AuthOtpAlgoSHA512
)

// AuthOtp is a user's (at most one) TOTP enrollment.
type AuthOtp struct {
	ID       int32
	UsersID  int32
	Algo     AuthOtpAlgo
	Secret   []byte
	Digits   int16
	Step     int16
	Verified bool
}

// AuthOtpCode is a single-use backup code belonging to an AuthOtp.
type AuthOtpCode struct {
	ID        int32
	AuthOtpID int32
	Hash      string
	Used      bool
}

// SubjectTable names which table (users or groups) a Permission's
// subject id, or its optional resource id, refers to.
type SubjectTable string

const (
	SubjectUsers  SubjectTable = "users"
	SubjectGroups SubjectTable = "groups"
)

// Ability is the access mode a Permission grants.
type Ability string

const (
	AbilityRead      Ability = "r"
	AbilityReadWrite Ability = "rw"
)

// Permission is one grant: subject may perform ability on roll,
// optionally scoped to a specific resource.
type Permission struct {
	ID            int32
	SubjectTable  SubjectTable
	SubjectID     int32
	Roll          string
	Ability       Ability
	ResourceTable *SubjectTable
	ResourceID    *int32
}

// Group is a named collection of users.
type Group struct {
	ID   int32
	Name string
}

// GroupUser is one membership edge.
type GroupUser struct {
	GroupID int32
	UsersID int32
}
