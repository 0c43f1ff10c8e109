package transfer

type linkedinImageElement struct {
	Identifiers []struct {
		Identifier string `json:"identifier"`
	} `json:"identifiers"`
}

type LinkedInImage struct {
	Elements []linkedinImageElement `json:"elements"`
}

// LargestURL returns the identifier of the last (largest) rendition.
func (i *LinkedInImage) LargestURL() string {
	if i == nil || len(i.Elements) == 0 {
		return ""
	}
	last := i.Elements[len(i.Elements)-1]
	if len(last.Identifiers) == 0 {
		return ""
	}
	return last.Identifiers[0].Identifier
}

type LinkedInProfile struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
	ProfilePicture     struct {
		DisplayImage *LinkedInImage `json:"displayImage~"`
	} `json:"profilePicture"`
}

type LinkedInEmailResponse struct {
	Elements []struct {
		Handle struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"handle~"`
	} `json:"elements"`
}

type LinkedInOrganization struct {
	ID             int64  `json:"id"`
	LocalizedName  string `json:"localizedName"`
	VanityName     string `json:"vanityName"`
	FollowersCount int64  `json:"followersCount"`
	LogoV2         struct {
		Original *LinkedInImage `json:"original~"`
	} `json:"logoV2"`
}

type LinkedInOrganizationAcls struct {
	Elements []struct {
		OrganizationalTarget LinkedInOrganization `json:"organizationalTarget~"`
	} `json:"elements"`
}

type LinkedInShareCommentary struct {
	Text string `json:"text"`
}

type LinkedInShareContent struct {
	ShareCommentary    LinkedInShareCommentary `json:"shareCommentary"`
	ShareMediaCategory string                  `json:"shareMediaCategory"`
}

type LinkedInUgcPost struct {
	Author          string `json:"author"`
	LifecycleState  string `json:"lifecycleState"`
	SpecificContent struct {
		ShareContent LinkedInShareContent `json:"com.linkedin.ugc.ShareContent"`
	} `json:"specificContent"`
	Visibility struct {
		MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
	} `json:"visibility"`
}

type LinkedInError struct {
	Message     string `json:"message"`
	ServiceCode int    `json:"serviceErrorCode"`
	Status      int    `json:"status"`
}
