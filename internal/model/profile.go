package model

// Profile describes a bookable talent as stored in the `profiles`
// table.  Profiles are maintained by an external talent-management flow
// and are read-only here.  Optional columns are pointers so that an
// absent value is distinguishable from a zero value; in particular a
// nil PricePerProject means "unknown price", never zero.
//
// Fields:
//  ID              – primary key, equal to the talent's users.id.
//  FullName        – display name.
//  Category        – category tag (e.g. "singer", "mc").
//  PricePerProject – price for one booking in yen (nullable).
//  AvatarURL       – avatar image reference.
//  Bio             – biography text.
//  SubImage1       – optional secondary media.
//  SubImage2       – optional secondary media.
//  VoiceURL        – optional voice sample.
type Profile struct {
    ID              uint64  `json:"id"`                          // profiles.id
    FullName        string  `json:"full_name"`                   // profiles.full_name
    Category        string  `json:"category"`                    // profiles.category
    PricePerProject *int64  `json:"price_per_project,omitempty"` // profiles.price_per_project (nullable)
    AvatarURL       string  `json:"avatar_url"`                  // profiles.avatar_url
    Bio             string  `json:"bio"`                         // profiles.bio
    SubImage1       *string `json:"sub_image1,omitempty"`        // profiles.sub_image1 (nullable)
    SubImage2       *string `json:"sub_image2,omitempty"`        // profiles.sub_image2 (nullable)
    VoiceURL        *string `json:"voice_url,omitempty"`         // profiles.voice_url (nullable)
}

// Price reports the price per project and whether it is known.
func (p Profile) Price() (int64, bool) {
    if p.PricePerProject == nil {
        return 0, false
    }
    return *p.PricePerProject, true
}
