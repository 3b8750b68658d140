package types

type UserResponse struct {
	ID              uint   `json:"id"`
	KakaoID         int64  `json:"kakao_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profile_image_url"`
}
