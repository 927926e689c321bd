package dto

// AddLineRequest 加购
type AddLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	BranchID  uint `json:"branch_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateLineRequest 修改数量,0表示删除
type UpdateLineRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=999"`
}
