package entity

type Community struct {
	Base
	CreatedBy     string
	CreatedByUser User `gorm:"foreignKey:CreatedBy"`

	Handle       string `gorm:"unique"`
	DisplayName  string
	Introduction []byte `gorm:"type:longtext"`
	Members      int

	// Sprint settings. Zero values fall back to the platform defaults in
	// configs.
	RewardPointsPerSprint uint64
	EligibilityThreshold  int
}
