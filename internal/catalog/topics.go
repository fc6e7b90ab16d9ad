package catalog

import "strconv"

const TopicProductSearched = "product.searched"

// Partition by user so one user's searches stay ordered.
func PartitionKey(userID int64) []byte { return []byte(strconv.FormatInt(userID, 10)) }
