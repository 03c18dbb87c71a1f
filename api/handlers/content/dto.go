package content

// DeleteCommentResponse 删除评论响应，removed 包含被级联删除的回复
type DeleteCommentResponse struct {
	Removed []string `json:"removed"`
}
