package dto

// AdjustStockRequest 入库/出库
type AdjustStockRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	BranchID  uint   `json:"branch_id" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=STOCK_IN STOCK_OUT"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Note      string `json:"note" binding:"max=255"`
}

// StockQuery 库存查询参数
type StockQuery struct {
	ProductID uint `form:"product_id"`
	BranchID  uint `form:"branch_id"`
}

// MovementsQuery 库存流水查询参数
type MovementsQuery struct {
	ProductID uint `form:"product_id"`
	BranchID  uint `form:"branch_id"`
	OrderID   uint `form:"order_id"`
	Page      int  `form:"page"`
	PageSize  int  `form:"page_size"`
}

// AuditQuery 审计日志查询参数
type AuditQuery struct {
	UserID   uint `form:"user_id"`
	Page     int  `form:"page"`
	PageSize int  `form:"page_size"`
}
