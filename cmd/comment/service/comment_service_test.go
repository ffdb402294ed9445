package service

import (
	"strings"
	"testing"

	"UniShare.com/pkg/errno"
)

func TestValidateCommentContent(t *testing.T) {
	service := &CommentService{}

	cases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"Valid", "This looks really useful, thanks for sharing!", false},
		{"SingleRune", "k", false},
		{"Unicode", "很有帮助的资料，谢谢分享", false},
		{"Empty", "", true},
		{"WhitespaceOnly", "   \t\n  ", true},
		{"ExactlyMaxLength", strings.Repeat("ab", 250), false},
		{"OverMaxLength", strings.Repeat("a b c", 101), true},
		{"ExcessiveRepetition", "greaaaaaaat post", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.validateCommentContent(tc.content)
			if tc.wantErr && err == nil {
				t.Errorf("expected %q to be rejected", tc.content)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected %q to be accepted, got %v", tc.content, err)
			}
			if tc.wantErr && err != nil {
				if errno.ConvertErr(err).ErrCode != errno.ParamErrCode {
					t.Errorf("expected ParamErr, got %v", err)
				}
			}
		})
	}
}

func TestMaxLengthCountsRunesNotBytes(t *testing.T) {
	service := &CommentService{}

	// 500 multibyte runes are within the limit even though the byte
	// count is far above it.
	content := strings.Repeat("好的", 250)
	if err := service.validateCommentContent(content); err != nil {
		t.Errorf("500 runes should be accepted, got %v", err)
	}
	if err := service.validateCommentContent(content + "好"); err == nil {
		t.Error("501 runes should be rejected")
	}
}

func TestHasExcessiveRepetition(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{"NormalText", "this is a perfectly normal comment", false},
		{"SixRepeats", "wooooooow that is great", true},
		{"FiveRepeatsAllowed", "coooool, nice work here", false},
		{"ShortInputNeverFlagged", "aaaaaaaa", false},
		{"RepeatsResetOnChange", "ababababababababab", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasExcessiveRepetition(tc.content); got != tc.want {
				t.Errorf("hasExcessiveRepetition(%q) = %v, want %v", tc.content, got, tc.want)
			}
		})
	}
}
