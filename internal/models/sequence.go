package models

// UserIDSequence is the sequence user ids are allocated from
const UserIDSequence = "USER_ID_SEQ"

// Sequence is a named counter in the sequences collection. Val is the last issued value.
type Sequence struct {
	ID  string `bson:"_id" json:"id"`
	Val uint64 `bson:"val" json:"val"`
}
