package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/linguaflow/auth-service/internal/dto"
)

func (s *Suite) login(googleID, email, name string) *dto.AuthResponse {
	reqBody := dto.GoogleLoginRequest{
		IDToken: googleAssertion(googleID, email, name),
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/google",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode, "Login should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	return &authResp
}

func (s *Suite) TestGoogleLogin_Success() {
	reqBody := dto.GoogleLoginRequest{
		IDToken: googleAssertion("g-100", "test@example.com", "Test User"),
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/google",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResp)
	s.Require().NoError(err)

	s.NotEmpty(authResp.AccessToken)
	s.NotEmpty(authResp.RefreshToken)
	s.Equal("Bearer", authResp.TokenType)
	s.NotZero(authResp.ExpiresIn)
	s.Equal("test@example.com", authResp.User.Email)
	s.Equal("g-100", authResp.User.GoogleID)
	s.NotEmpty(authResp.User.ID)

	cookies := resp.Cookies()
	s.NotEmpty(cookies, "Should have refresh token cookie")
}

func (s *Suite) TestGoogleLogin_SameIdentityReusesAccount() {
	first := s.login("g-200", "repeat@example.com", "Repeat User")
	second := s.login("g-200", "repeat@example.com", "Repeat User")

	s.Equal(first.User.ID, second.User.ID)
	s.NotEqual(first.RefreshToken, second.RefreshToken)
}

func (s *Suite) TestGoogleLogin_InvalidAssertion() {
	reqBody := dto.GoogleLoginRequest{
		IDToken: "not-a-valid-assertion",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/google",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Unauthorized", errResp.Error)
}

func (s *Suite) TestGoogleLogin_MissingToken() {
	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/google",
		"application/json",
		bytes.NewBufferString(`{}`),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRefresh_Success() {
	authResp := s.login("g-300", "refresh@example.com", "Refresh User")

	reqBody := dto.RefreshRequest{RefreshToken: authResp.RefreshToken}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/refresh",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var refreshResp dto.RefreshResponse
	err = json.NewDecoder(resp.Body).Decode(&refreshResp)
	s.Require().NoError(err)

	s.NotEmpty(refreshResp.AccessToken)
	s.NotEmpty(refreshResp.RefreshToken)
	s.NotEqual(authResp.RefreshToken, refreshResp.RefreshToken)
	s.Equal("Bearer", refreshResp.TokenType)
}

func (s *Suite) TestRefresh_ReplayRejected() {
	authResp := s.login("g-301", "replay@example.com", "Replay User")

	reqBody := dto.RefreshRequest{RefreshToken: authResp.RefreshToken}
	body, _ := json.Marshal(reqBody)

	resp1, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	resp1.Body.Close()
	s.Equal(http.StatusOK, resp1.StatusCode)

	// Presenting the rotated-out token again must fail
	body, _ = json.Marshal(reqBody)
	resp2, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp2.Body.Close()

	s.Equal(http.StatusUnauthorized, resp2.StatusCode)
}

func (s *Suite) TestRefresh_AccessTokenRejected() {
	authResp := s.login("g-302", "wrongtype@example.com", "Wrong Type")

	reqBody := dto.RefreshRequest{RefreshToken: authResp.AccessToken}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_NoToken() {
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBufferString(`{}`))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogout_Success() {
	authResp := s.login("g-400", "logout@example.com", "Logout User")

	reqBody := dto.LogoutRequest{RefreshToken: authResp.RefreshToken}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/logout", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var successResp dto.SuccessResponse
	json.NewDecoder(resp.Body).Decode(&successResp)
	s.Equal("Logged out successfully", successResp.Message)

	// The retired refresh token no longer rotates
	body, _ = json.Marshal(dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	refreshResp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestLogout_UnknownTokenStillSucceeds() {
	reqBody := dto.LogoutRequest{RefreshToken: "never-issued"}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/logout", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestVerify_Success() {
	authResp := s.login("g-500", "verify@example.com", "Verify User")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/verify", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var verifyResp dto.VerifyResponse
	err = json.NewDecoder(resp.Body).Decode(&verifyResp)
	s.Require().NoError(err)

	s.True(verifyResp.Valid)
	s.Equal(authResp.User.ID, verifyResp.User.ID)
	s.Equal("verify@example.com", verifyResp.User.Email)
}

func (s *Suite) TestVerify_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/verify", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestVerify_InvalidToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	authResp := s.login("g-600", "getme@example.com", "Get Me")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	err = json.NewDecoder(resp.Body).Decode(&userResp)
	s.Require().NoError(err)

	s.NotEmpty(userResp.ID)
	s.Equal("getme@example.com", userResp.Email)
	s.Equal("g-600", userResp.GoogleID)
	s.NotEmpty(userResp.CreatedAt)
	s.JSONEq(`{}`, string(userResp.Preferences))
}

func (s *Suite) TestGetSessions() {
	authResp := s.login("g-700", "sessions@example.com", "Session User")
	s.login("g-700", "sessions@example.com", "Session User")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/sessions", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var sessions []dto.SessionInfo
	err = json.NewDecoder(resp.Body).Decode(&sessions)
	s.Require().NoError(err)

	s.Len(sessions, 2)
}

func (s *Suite) TestUpdatePreferences() {
	authResp := s.login("g-800", "prefs@example.com", "Prefs User")

	reqBody := dto.PreferencesRequest{
		Preferences: json.RawMessage(`{"target_language":"es","daily_goal":20}`),
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("PUT", s.BaseURL+"/api/v1/users/me/preferences", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	err = json.NewDecoder(resp.Body).Decode(&userResp)
	s.Require().NoError(err)
	s.JSONEq(`{"target_language":"es","daily_goal":20}`, string(userResp.Preferences))

	// Preferences survive across requests
	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()

	var meBody dto.UserResponse
	json.NewDecoder(meResp.Body).Decode(&meBody)
	s.JSONEq(`{"target_language":"es","daily_goal":20}`, string(meBody.Preferences))
}

func (s *Suite) TestDeactivateAccount() {
	authResp := s.login("g-900", "deactivate@example.com", "Deactivate User")

	req, _ := http.NewRequest("DELETE", s.BaseURL+"/api/v1/users/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	// Access token stops working immediately
	verifyReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/verify", nil)
	verifyReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	verifyResp, err := http.DefaultClient.Do(verifyReq)
	s.Require().NoError(err)
	defer verifyResp.Body.Close()
	s.Equal(http.StatusUnauthorized, verifyResp.StatusCode)

	// And so does the refresh token
	body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	refreshResp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestCompleteFlow() {
	authResp := s.login("g-1000", "complete@example.com", "Complete User")
	accessToken := authResp.AccessToken

	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	refreshResp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusOK, refreshResp.StatusCode)

	var rotated dto.RefreshResponse
	json.NewDecoder(refreshResp.Body).Decode(&rotated)

	body, _ = json.Marshal(dto.LogoutRequest{RefreshToken: rotated.RefreshToken})
	logoutResp, err := http.Post(s.BaseURL+"/api/v1/auth/logout", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	// The logged-out refresh token is dead
	body, _ = json.Marshal(dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	deadResp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer deadResp.Body.Close()
	s.Equal(http.StatusUnauthorized, deadResp.StatusCode)
}
