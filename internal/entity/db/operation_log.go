package db

import "time"

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationImport = "import"
	OperationExport = "export"
)

const ModuleBusiness = "business"

// OperationLog 操作日志，只追加不修改。
type OperationLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorID       uint      `gorm:"column:operator_id;index" json:"operator_id"`
	OperatorName     string    `gorm:"column:operator_name;type:varchar(64)" json:"operator_name"`
	OperationType    string    `gorm:"column:operation_type;type:varchar(20);not null" json:"operation_type"`
	OperationContent string    `gorm:"column:operation_content;type:text" json:"operation_content"`
	IPAddress        string    `gorm:"column:ip_address;type:varchar(64)" json:"ip_address"`
	Module           string    `gorm:"column:module;type:varchar(32);index:idx_log_related,priority:1" json:"module"`
	RelatedID        uint      `gorm:"column:related_id;index:idx_log_related,priority:2" json:"related_id"`
	OperationTime    time.Time `gorm:"column:operation_time;not null" json:"operation_time"`
}

// TableName 指定表名。
func (OperationLog) TableName() string {
	return "operation_log"
}
